//go:build darwin

package platform

func speechEngines() []speechEngine {
	return []speechEngine{{name: "say", args: sayArgs}}
}
