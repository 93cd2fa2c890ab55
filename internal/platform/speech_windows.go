//go:build windows

package platform

func speechEngines() []speechEngine {
	return []speechEngine{
		{name: "powershell", args: powershellArgs},
		{name: "pwsh", args: powershellArgs},
	}
}
