package heroproto

import "fmt"

var (
	ErrorMissingType    = fmt.Errorf("invalid frame: missing type")
	ErrorMalformedFrame = fmt.Errorf("invalid frame: malformed json")
	ErrorNoWaitHint     = fmt.Errorf("no wait hint in message")
)
