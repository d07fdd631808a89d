package dist

import "runtime"

func launcherName(base string) string {
	if runtime.GOOS != "windows" {
		return base
	}
	if base == "mvn" {
		return base + ".cmd"
	}
	return base + ".bat"
}

// Layouts lists the known wrapper families.
func Layouts() []Layout {
	return []Layout{MavenLayout, GradleLayout}
}

// LayoutByName returns the layout registered under name.
func LayoutByName(name string) (Layout, bool) {
	for _, l := range Layouts() {
		if l.Name == name {
			return l, true
		}
	}
	return Layout{}, false
}
