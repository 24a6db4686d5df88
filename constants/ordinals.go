package constants

import (
	"fmt"
	"regexp"
)

const (
	AppName = "ordinals"
	Version = "0.1.0"

	OutpointDelimiter = ":"
	IdRegexpContent   = `^[a-f0-9]{64}%s\d+$`
)

var (
	OutpointRegexp = regexp.MustCompile(fmt.Sprintf(IdRegexpContent, OutpointDelimiter))
	SatPointRegexp = regexp.MustCompile(`^[a-f0-9]{64}:\d+:\d+$`)
)

const (
	DefaultRpcListen     = "127.0.0.1:8335"
	DefaultMaxReorgDepth = 100
	DefaultFetchBatch    = 32
	DefaultPollInterval  = "5s"
	DefaultLogLevel      = "info"
)
