package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ AccountService = (*Service)(nil)
	_ EventPublisher = NopEventPublisher{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
