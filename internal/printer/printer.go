package printer

import "github.com/slok/scriptd/internal/model"

// Printer knows how to print scriptd information in different formats.
type Printer interface {
	PrintEnvironment(env model.ExecutionEnvironment) error
	PrintRun(run model.Run) error
	PrintMessage(msg string) error
}
