package ui

// quietPresenter consumes events but produces no output.
type quietPresenter struct{}

func (*quietPresenter) Run(events <-chan Event) error {
	//nolint:revive // empty-block: the engine must never block on a full channel
	for range events {
	}
	return nil
}

func (*quietPresenter) Summary() string {
	return ""
}
