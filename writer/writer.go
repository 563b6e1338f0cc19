package writer

import (
	"encoding/xml"
	"io"
)

// Output writes value as indented XML followed by a newline.
func Output(out io.Writer, value any) error {
	result, err := xml.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	if _, err := out.Write(result); err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}
