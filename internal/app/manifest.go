// Package app loads a devkit project: its manifest.json and the modules
// installed for it.
package app

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/tidwall/jsonc"

	oerrors "github.com/gcdevkit/devkit/internal/errors"
)

// ManifestFile is the manifest file name inside an app directory.
const ManifestFile = "manifest.json"

//go:embed schema/manifest.cue
var manifestSchemaCUE []byte

// Manifest is the subset of manifest.json devkit reads. Other keys are
// allowed and ignored.
type Manifest struct {
	AppID     string `json:"appID"`
	ShortName string `json:"shortName"`
	Title     string `json:"title,omitempty"`
	Version   string `json:"version,omitempty"`

	// Modules lists module names in enumeration order. When empty, modules
	// are discovered from the filesystem.
	Modules []string `json:"modules,omitempty"`
}

// ParseManifest parses manifest content. Comments and trailing commas are
// accepted. name is used in error messages.
func ParseManifest(name string, data []byte) (*Manifest, error) {
	data = jsonc.ToJSON(data)

	if err := validateManifest(name, data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, oerrors.WrapValidation(err, "decoding "+name)
	}
	return &m, nil
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError(
				"no "+ManifestFile+" found",
				path,
				"Run devkit from an app directory or pass --app",
			)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(path, data)
}

func validateManifest(name string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(manifestSchemaCUE, cue.Filename("manifest.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling manifest schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return oerrors.WrapValidation(err, "parsing "+name)
	}

	err := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(value).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var msgs []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		field := strings.Join(trimDefinitions(e.Path()), ".")
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, fmt.Sprintf(format, args...)))
	}
	return oerrors.NewValidationError(strings.Join(msgs, "\n  "), name, "Check "+ManifestFile+" has an appID and a valid shortName")
}

func trimDefinitions(path []string) []string {
	out := path[:0:0]
	for _, p := range path {
		if !strings.HasPrefix(p, "#") {
			out = append(out, p)
		}
	}
	return out
}
