// Package security loads TLS material for the file server and its
// clients.
//
//	cfg := security.TLSConfig{
//	    CertFile:     "/etc/filekit/cert.pem",
//	    KeyFile:      "/etc/filekit/key.pem",
//	    ClientCAFile: "/etc/filekit/clients-ca.pem", // optional, enables mTLS
//	}
//	tlsConfig, err := cfg.ServerConfig()
package security
