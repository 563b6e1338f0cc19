package tokenizer

import (
	"encoding/xml"
	"fmt"
)

// MarshalXML writes the token as <type> value </type>, the format of the
// token dump files.
func (t Token) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = string(t.Type)
	return e.EncodeElement(fmt.Sprintf(" %s ", t.Raw), start)
}
