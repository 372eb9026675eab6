package security

import (
	"crypto/tls"
	"testing"

	"github.com/kbukum/filekit/security/tlstest"
)

func TestServerConfigDisabled(t *testing.T) {
	var nilCfg *TLSConfig
	if nilCfg.IsEnabled() {
		t.Fatal("nil config reported enabled")
	}
	got, err := (&TLSConfig{}).ServerConfig()
	if err != nil || got != nil {
		t.Fatalf("ServerConfig() = %v, %v; want nil, nil", got, err)
	}
}

func TestServerConfig(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)

	cfg := &TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}
	got, err := cfg.ServerConfig()
	if err != nil {
		t.Fatalf("ServerConfig: %v", err)
	}
	if len(got.Certificates) != 1 {
		t.Errorf("certificates = %d, want 1", len(got.Certificates))
	}
	if got.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %d, want TLS 1.2", got.MinVersion)
	}
	if got.ClientAuth != tls.NoClientCert {
		t.Errorf("ClientAuth = %v, want none", got.ClientAuth)
	}
}

func TestServerConfigMutualTLS(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)

	cfg := &TLSConfig{
		CertFile:     certs.CertFile,
		KeyFile:      certs.KeyFile,
		ClientCAFile: certs.CAFile,
		MinVersion:   tls.VersionTLS13,
	}
	got, err := cfg.ServerConfig()
	if err != nil {
		t.Fatalf("ServerConfig: %v", err)
	}
	if got.ClientAuth != tls.RequireAndVerifyClientCert || got.ClientCAs == nil {
		t.Errorf("mutual TLS not configured: %v", got.ClientAuth)
	}
	if got.MinVersion != tls.VersionTLS13 {
		t.Errorf("MinVersion = %d, want TLS 1.3", got.MinVersion)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TLSConfig
		wantErr bool
	}{
		{"empty", TLSConfig{}, false},
		{"pair", TLSConfig{CertFile: "c", KeyFile: "k"}, false},
		{"cert only", TLSConfig{CertFile: "c"}, true},
		{"key only", TLSConfig{KeyFile: "k"}, true},
		{"client ca without cert", TLSConfig{ClientCAFile: "ca"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestServerConfigErrors(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	bad := tlstest.WriteInvalidPEM(t, "bad.pem")

	tests := []struct {
		name string
		cfg  TLSConfig
	}{
		{"missing cert", TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}},
		{"invalid cert", TLSConfig{CertFile: bad, KeyFile: certs.KeyFile}},
		{"invalid client ca", TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile, ClientCAFile: bad}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.cfg.ServerConfig(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClientConfig(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)

	cfg, err := ClientConfig(certs.CAFile, "", "")
	if err != nil {
		t.Fatalf("ClientConfig: %v", err)
	}
	if cfg.RootCAs == nil || len(cfg.Certificates) != 0 {
		t.Errorf("unexpected client config: %+v", cfg)
	}

	cfg, err = ClientConfig(certs.CAFile, certs.CertFile, certs.KeyFile)
	if err != nil {
		t.Fatalf("ClientConfig with cert: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("certificates = %d, want 1", len(cfg.Certificates))
	}

	if _, err := ClientConfig("/nonexistent/ca.pem", "", ""); err == nil {
		t.Error("expected error for missing CA")
	}
}
