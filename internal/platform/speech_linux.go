//go:build linux

package platform

func speechEngines() []speechEngine {
	return []speechEngine{
		{name: "espeak-ng", args: espeakArgs},
		{name: "espeak", args: espeakArgs},
	}
}
