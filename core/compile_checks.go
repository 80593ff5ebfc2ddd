package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CredentialStore = (*MemoryCredentialStore)(nil)
	_ Signer          = BearerTokenSigner{}
	_ CredentialCodec = JSONCredentialCodec{}
	_ MetricsRecorder = NopMetricsRecorder{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
