// Package config loads filekit configuration.
//
// It resolves a config.yml and an optional .env file from the standard
// search paths, reads YAML with Viper, loads the .env file with godotenv and
// binds every environment variable onto nested keys, so
// FILESYSTEM_DISKS_LOCAL_ROOT overrides filesystem.disks.local.root.
//
// # Usage
//
//	settings, err := config.Load("filekit", config.WithConfigFile("config.yml"))
//	root := settings.Map("filesystem.disks.local")["root"]
//
// Load returns a live Settings view, so disk configuration is read fresh
// every time a disk is selected. LoadConfig unmarshals into a struct that
// embeds ServiceConfig.
package config
