package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ClassFileName is the default name used when exporting the class list.
const ClassFileName = "classes.json"

var (
	ErrClassFileFormat = errors.New("the file format is incorrect")
	ErrNoClasses       = errors.New("there is no class to export")
)

// EncodeClassNames writes names as a JSON array in rank order.
func EncodeClassNames(w io.Writer, names []string) error {
	if len(names) == 0 {
		return ErrNoClasses
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(names)
}

// DecodeClassNames reads a JSON array of strings.
func DecodeClassNames(r io.Reader) ([]string, error) {
	var raw any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassFileFormat, err)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, ErrClassFileFormat
	}
	names := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, ErrClassFileFormat
		}
		names = append(names, s)
	}
	return names, nil
}
