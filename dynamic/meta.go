package dynamic

import (
	"encoding/json"
	"runtime/debug"
	"strings"

	"github.com/aura-studio/lambdaweb/mode"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var pathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`)

type FunctionInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Region   string `json:"region"`
	MemoryMB int    `json:"memoryMb"`
}

type BuildInfo struct {
	Module  string `json:"module"`
	Version string `json:"version"`
	Built   string `json:"built"`
}

type WarehouseInfo struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

type Meta struct {
	Function  FunctionInfo  `json:"function"`
	Build     BuildInfo     `json:"build"`
	Warehouse WarehouseInfo `json:"warehouse"`
}

func readBuildInfo() BuildInfo {
	info := BuildInfo{}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.Module = bi.Main.Path
	info.Version = bi.Main.Version
	for _, s := range bi.Settings {
		if s.Key == "vcs.time" {
			info.Built = s.Value
			break
		}
	}
	return info
}

// Meta describes the running function, its build and the warehouses in use,
// merged with the Meta of pkg/version when that package resolves. Package
// fields never replace the built-in ones.
func (l *Loader) Meta(pkg string, version string) string {
	meta := Meta{
		Build: readBuildInfo(),
		Warehouse: WarehouseInfo{
			Local:  l.LocalWarehouse,
			Remote: l.RemoteWarehouse,
		},
	}
	if env, err := mode.Load(); err == nil {
		meta.Function = FunctionInfo{
			Name:     env.FunctionName,
			Version:  env.FunctionVersion,
			Region:   env.Region,
			MemoryMB: env.MemoryMB,
		}
	}

	b, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	result := string(b)

	if pkg == "" || version == "" {
		return result
	}
	tunnel, err := l.GetPackage(pkg, version)
	if err != nil {
		return result
	}
	tunnelMeta := tunnel.Meta()
	if !gjson.Valid(tunnelMeta) || !gjson.Parse(tunnelMeta).IsObject() {
		return result
	}

	gjson.Parse(tunnelMeta).ForEach(func(key, value gjson.Result) bool {
		path := pathEscaper.Replace(key.String())
		if gjson.Get(result, path).Exists() {
			return true
		}
		if merged, err := sjson.SetRaw(result, path, value.Raw); err == nil {
			result = merged
		}
		return true
	})
	return result
}
