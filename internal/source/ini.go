package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	cfvalue "github.com/yanizio/confstack/internal/value"
)

// NewINISource returns a Source that parses an INI file: `[section]`
// headers, `key = value` pairs, `;`/`#` comments, and a `DEFAULT` section
// whose keys are inherited by every subsequent section (spec.md §6). Keys
// form `section.key` in the returned mapping; if sectionFilter is non-empty
// only that section is returned, as a flat mapping (spec.md §4.2).
func NewINISource(path string, sectionFilter string) Source {
	b := newBase("ini", path, nil, fileAvailable(path), fileFingerprint(path))
	b.doLoad = func(ctx context.Context) (cfvalue.Mapping, error) {
		checkExtension(path, "ini", "cfg", "conf")

		data, err := readFileUTF8(path)
		if err != nil {
			return cfvalue.Mapping{}, err
		}

		sections, order, err := parseINI(data)
		if err != nil {
			zap.S().Errorw("ini config parse failed", "path", path, "err", err)
			return cfvalue.Mapping{}, err
		}

		defaults := sections["DEFAULT"]

		if sectionFilter != "" {
			sec, ok := sections[sectionFilter]
			if !ok {
				return cfvalue.Mapping{}, nil
			}
			flat := cfvalue.Mapping{}
			for k, v := range defaults {
				flat[k] = coerceINIValue(v)
			}
			for k, v := range sec {
				flat[k] = coerceINIValue(v)
			}
			return flat, nil
		}

		root := cfvalue.Mapping{}
		for _, secName := range order {
			merged := cfvalue.Mapping{}
			for k, v := range defaults {
				merged[k] = coerceINIValue(v)
			}
			for k, v := range sections[secName] {
				merged[k] = coerceINIValue(v)
			}
			root[secName] = cfvalue.Map(merged)
		}
		if len(defaults) > 0 {
			defaultFlat := cfvalue.Mapping{}
			for k, v := range defaults {
				defaultFlat[k] = coerceINIValue(v)
			}
			root["DEFAULT"] = cfvalue.Map(defaultFlat)
		}
		return root, nil
	}
	return b
}

func parseINI(data []byte) (map[string]map[string]string, []string, error) {
	sections := map[string]map[string]string{}
	var order []string
	current := "DEFAULT"
	sections[current] = map[string]string{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			if _, ok := sections[current]; !ok {
				sections[current] = map[string]string{}
				order = append(order, current)
			}
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, nil, fmt.Errorf("ini: line %d: missing '=' in %q", lineNo, line)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		sections[current][key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return sections, order, nil
}

// coerceINIValue applies the value coercion rule from spec.md §4.2: a
// case-insensitive boolean vocabulary, then signed integers, then floats
// (including scientific notation), else string.
func coerceINIValue(raw string) cfvalue.Value {
	lower := strings.ToLower(raw)
	switch lower {
	case "true", "yes", "on", "1":
		return cfvalue.Bool(true)
	case "false", "no", "off", "0":
		return cfvalue.Bool(false)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return cfvalue.Int(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return cfvalue.Float(f)
	}
	return cfvalue.String(raw)
}
