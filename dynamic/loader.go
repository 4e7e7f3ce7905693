// Package dynamic configures the aura-studio/dynamic package loader that
// backs bridge.Dynamic.
package dynamic

import (
	"github.com/aura-studio/dynamic"
	"github.com/sirupsen/logrus"
)

// Loader owns the process-wide aura-studio/dynamic settings. Create one per
// process.
type Loader struct {
	*Options
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		Options: NewOptions(opts...),
	}
	if l.Logger == nil {
		l.Logger = logrus.StandardLogger()
	}

	l.install()

	return l
}

func (l *Loader) install() {
	if l.Toolchain.OS != "" {
		dynamic.DynamicOS = l.Toolchain.OS
	}
	if l.Toolchain.Arch != "" {
		dynamic.DynamicArch = l.Toolchain.Arch
	}
	if l.Toolchain.Compiler != "" {
		dynamic.DynamicCompiler = l.Toolchain.Compiler
	}
	if l.Toolchain.Variant != "" {
		dynamic.DynamicVariant = l.Toolchain.Variant
	}

	dynamic.UseWarehouse(l.LocalWarehouse, l.RemoteWarehouse)

	if l.Namespace != "" {
		dynamic.UseNamespace(l.Namespace)
	}
	if l.DefaultVersion != "" {
		dynamic.UseDefaultVersion(l.DefaultVersion)
	}

	for _, p := range l.StaticPackages {
		dynamic.RegisterPackage(p.Package, p.Version, p.Tunnel)
	}

	for _, p := range l.PreloadPackages {
		if _, err := dynamic.GetPackage(p.Package, p.Version); err != nil {
			l.Logger.WithFields(logrus.Fields{
				"namespace": l.Namespace,
				"package":   p.Package,
				"version":   p.Version,
			}).WithError(err).Warn("[Dynamic] preload failed")
		}
	}
}

func (l *Loader) GetPackage(pkg string, version string) (dynamic.Tunnel, error) {
	return dynamic.GetPackage(pkg, version)
}
