package soil

import "errors"

var (
	ErrTimeStep        = errors.New("soil: time step must be positive")
	ErrUnknownOverride = errors.New("soil: scenario names no parameter or variable")
	ErrNotReady        = errors.New("soil: PostSetup has not run")
	ErrAlreadySetup    = errors.New("soil: PostSetup already ran")
	ErrLinkAfterSetup  = errors.New("soil: links must be added before PostSetup")
	ErrVolume          = errors.New("soil: soil volume must be positive")
)
