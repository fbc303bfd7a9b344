package orchestrators

import (
	"fmt"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

// Workflow steps named in TargetError
const (
	StepStage    = "stage"
	StepCompile  = "compile"
	StepPackage  = "package"
	StepCleanup  = "cleanup"
	StepChecksum = "checksum"
)

// TargetError reports which target and step of the release failed
type TargetError struct {
	Target entities.Target
	Stage  string
	Step   string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Step, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}
