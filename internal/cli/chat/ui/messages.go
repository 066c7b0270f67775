package ui

// turnSettledMsg reports that the outstanding turn has a reply or a failure
// recorded in the controller. The outcome is read from controller state.
type turnSettledMsg struct{}
