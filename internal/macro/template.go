package macro

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/wex/internal/variable"
)

// template expands the template file named by v.
func (f *FSM) template(ctl Control, v *variable.Variable) (string, error) {
	for _, name := range f.expanding {
		if name == v.Name() {
			return "", fmt.Errorf("%s: %w", v.Name(), ErrRecursive)
		}
	}
	f.expanding = append(f.expanding, v.Name())
	defer func() { f.expanding = f.expanding[:len(f.expanding)-1] }()

	return f.templateFile(ctl, v)
}

// templateFile copies the template to the result, replacing each @name@
// with the expansion of variable name. @@ stands for a literal @. Nothing
// is returned unless the whole template expands.
func (f *FSM) templateFile(ctl Control, v *variable.Variable) (string, error) {
	if !v.IsTemplate() || v.Value() == "" {
		return "", fmt.Errorf("%s: %w", v.Name(), ErrNotTemplate)
	}

	path := v.Value()
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.configDir, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w %s: %v", ErrTemplateOpen, path, err)
	}
	defer file.Close()

	var out strings.Builder
	r := bufio.NewReader(file)

	for {
		c, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading template %s: %w", path, err)
		}
		if c != '@' {
			out.WriteRune(c)
			continue
		}

		name, err := r.ReadString('@')
		if err != nil {
			return "", fmt.Errorf("%s: @%s: %w", v.Name(), name, ErrUnterminated)
		}
		name = strings.TrimSuffix(name, "@")
		if name == "" {
			out.WriteByte('@')
			continue
		}

		text, err := f.expandOne(ctl, f.store.Variable(name))
		if err != nil {
			return "", fmt.Errorf("template %s: %w", v.Name(), err)
		}
		out.WriteString(text)
	}

	return out.String(), nil
}
