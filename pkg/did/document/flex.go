package document

import "encoding/json"

// FlexStrings is a string list that serializes a single element as a bare
// string, matching how DID documents flatten one-element sets for fields
// like @context, controller and serviceEndpoint.
type FlexStrings []string

func (f FlexStrings) MarshalJSON() ([]byte, error) {
	if len(f) == 1 {
		return json.Marshal(f[0])
	}

	return json.Marshal([]string(f))
}

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*f = FlexStrings{s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}

	*f = FlexStrings(list)
	return nil
}
