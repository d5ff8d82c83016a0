//go:build !linux
// +build !linux

package mmport

func newDrainGate() drainGate {
	return newChanGate()
}
