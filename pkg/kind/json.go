package kind

import "encoding/json"

// Kinds are interned: two structurally equal Kinds must come back as the
// same *Kind (pkg/kind's comparisons are pointer comparisons, see
// typedbits.go). encoding/json's normal json.Unmarshaler protocol can't
// preserve that — it hands UnmarshalJSON a pointer it already allocated,
// so there is no way to make that pointer become the canonical one. Kind
// therefore implements MarshalJSON (safe: marshaling never needs identity)
// but decoding goes through the package-level DecodeJSON, which recurses by
// hand through json.RawMessage and always returns the canonical, interned
// pointer for what it parses.

type wireField struct {
	Name string          `json:"name"`
	Kind json.RawMessage `json:"kind"`
}

type wireVariant struct {
	Name         string          `json:"name"`
	Discriminant int64           `json:"discriminant"`
	Payload      json.RawMessage `json:"payload"`
}

type wireKind struct {
	Tag      string              `json:"tag"`
	Width    int                 `json:"width,omitempty"`
	Base     json.RawMessage     `json:"base,omitempty"`
	Size     int                 `json:"size,omitempty"`
	Elems    []json.RawMessage   `json:"elements,omitempty"`
	Name     string              `json:"name,omitempty"`
	Fields   []wireField         `json:"fields,omitempty"`
	Variants []wireVariant       `json:"variants,omitempty"`
	Layout   *DiscriminantLayout `json:"layout,omitempty"`
	Clock    Color               `json:"clock,omitempty"`
}

var tagNames = map[Tag]string{
	TagEmpty: "empty", TagBits: "bits", TagSigned: "signed", TagArray: "array",
	TagTuple: "tuple", TagStruct: "struct", TagUnion: "union", TagEnum: "enum",
	TagSignal: "signal", TagClock: "clock", TagReset: "reset",
}

var namesToTag = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for t, n := range tagNames {
		m[n] = t
	}
	return m
}()

// MarshalJSON encodes k structurally; DecodeJSON run on the result always
// returns the canonical interned Kind for the encoded shape.
func (k *Kind) MarshalJSON() ([]byte, error) {
	w := wireKind{Tag: tagNames[k.tag]}
	var err error
	switch k.tag {
	case TagBits, TagSigned:
		w.Width = k.width
	case TagArray:
		if w.Base, err = json.Marshal(k.base); err != nil {
			return nil, err
		}
		w.Size = k.size
	case TagTuple:
		w.Elems = make([]json.RawMessage, len(k.elems))
		for i, e := range k.elems {
			if w.Elems[i], err = json.Marshal(e); err != nil {
				return nil, err
			}
		}
	case TagStruct, TagUnion:
		w.Name = k.name
		for _, f := range k.fields {
			raw, err := json.Marshal(f.Kind)
			if err != nil {
				return nil, err
			}
			w.Fields = append(w.Fields, wireField{Name: f.Name, Kind: raw})
		}
	case TagEnum:
		w.Name = k.name
		layout := k.layout
		w.Layout = &layout
		for _, v := range k.variants {
			raw, err := json.Marshal(v.Payload)
			if err != nil {
				return nil, err
			}
			w.Variants = append(w.Variants, wireVariant{
				Name: v.Name, Discriminant: v.Discriminant, Payload: raw,
			})
		}
	case TagSignal:
		if w.Base, err = json.Marshal(k.base); err != nil {
			return nil, err
		}
		w.Clock = k.clock
	}
	return json.Marshal(w)
}

// DecodeJSON parses data into the canonical interned *Kind for its encoded
// shape. Use this instead of json.Unmarshal for any *Kind-typed field.
func DecodeJSON(data []byte) (*Kind, error) {
	var w wireKind
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	tag, ok := namesToTag[w.Tag]
	if !ok {
		return nil, &UnknownKindTag{Tag: w.Tag}
	}
	switch tag {
	case TagEmpty:
		return Empty, nil
	case TagClock:
		return Clock, nil
	case TagReset:
		return Reset, nil
	case TagBits:
		return MakeBits(w.Width), nil
	case TagSigned:
		return MakeSigned(w.Width), nil
	case TagArray:
		base, err := DecodeJSON(w.Base)
		if err != nil {
			return nil, err
		}
		return MakeArray(base, w.Size), nil
	case TagTuple:
		elems := make([]*Kind, len(w.Elems))
		for i, raw := range w.Elems {
			e, err := DecodeJSON(raw)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return MakeTuple(elems), nil
	case TagStruct, TagUnion:
		fields, err := decodeWireFields(w.Fields)
		if err != nil {
			return nil, err
		}
		if tag == TagStruct {
			return MakeStruct(w.Name, fields), nil
		}
		return MakeUnion(w.Name, fields), nil
	case TagEnum:
		layout := DiscriminantLayout{}
		if w.Layout != nil {
			layout = *w.Layout
		}
		variants, err := decodeWireVariants(w.Variants)
		if err != nil {
			return nil, err
		}
		return MakeEnum(w.Name, variants, layout)
	case TagSignal:
		base, err := DecodeJSON(w.Base)
		if err != nil {
			return nil, err
		}
		return MakeSignal(base, w.Clock), nil
	default:
		return nil, &UnknownKindTag{Tag: w.Tag}
	}
}

func decodeWireFields(wfs []wireField) ([]Field, error) {
	out := make([]Field, len(wfs))
	for i, f := range wfs {
		k, err := DecodeJSON(f.Kind)
		if err != nil {
			return nil, err
		}
		out[i] = Field{Name: f.Name, Kind: k}
	}
	return out, nil
}

func decodeWireVariants(wvs []wireVariant) ([]Variant, error) {
	out := make([]Variant, len(wvs))
	for i, v := range wvs {
		k, err := DecodeJSON(v.Payload)
		if err != nil {
			return nil, err
		}
		out[i] = Variant{Name: v.Name, Discriminant: v.Discriminant, Payload: k}
	}
	return out, nil
}
