package cbor

import "encoding/binary"

// Constructors for the Value variants an encoder or test needs to build by
// hand; decoding never goes through these, only through decodeValue.

// Uint builds a KindUint value.
func Uint(n uint64) Value { return Value{Kind: KindUint, Uint: n} }

// NegInt builds a KindNegInt value from its logical (already-negative) form.
func NegInt(n int64) Value { return Value{Kind: KindNegInt, Int: n} }

// Bytes builds a KindBytes value.
func Bytes(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// Text builds a KindText value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Array builds a KindArray value.
func Array(items ...Value) Value { return Value{Kind: KindArray, Array: items} }

// Map builds a KindMap value from ordered pairs.
func Map(pairs ...Pair) Value { return Value{Kind: KindMap, Map: pairs} }

// BoolValue builds a KindBool value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Null builds a KindNull value.
func Null() Value { return Value{Kind: KindNull} }

// Encode serialises the subset of Value this module needs to round-trip:
// booleans, null, unsigned/negative integers, byte and text strings, arrays,
// and maps with integer- or text-keyed pairs.
func Encode(v Value) ([]byte, error) {
	var buf []byte
	switch v.Kind {
	case KindUint:
		buf = appendHead(buf, majorUnsignedInt, v.Uint)
	case KindNegInt:
		buf = appendHead(buf, majorNegativeInt, uint64(-1-v.Int))
	case KindBytes:
		buf = appendHead(buf, majorByteString, uint64(len(v.Bytes)))
		buf = append(buf, v.Bytes...)
	case KindText:
		buf = appendHead(buf, majorTextString, uint64(len(v.Text)))
		buf = append(buf, v.Text...)
	case KindArray:
		buf = appendHead(buf, majorArray, uint64(len(v.Array)))
		for _, item := range v.Array {
			enc, err := Encode(item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, enc...)
		}
	case KindMap:
		buf = appendHead(buf, majorMap, uint64(len(v.Map)))
		for _, pair := range v.Map {
			k, err := Encode(pair.Key)
			if err != nil {
				return nil, err
			}
			val, err := Encode(pair.Value)
			if err != nil {
				return nil, err
			}
			buf = append(buf, k...)
			buf = append(buf, val...)
		}
	case KindBool:
		if v.Bool {
			buf = append(buf, byte(majorSimple<<5)|simpleTrue)
		} else {
			buf = append(buf, byte(majorSimple<<5)|simpleFalse)
		}
	case KindNull:
		buf = append(buf, byte(majorSimple<<5)|simpleNull)
	case KindUndefined:
		buf = append(buf, byte(majorSimple<<5)|simpleUndefined)
	default:
		return nil, &EncodeError{msg: "unsupported value kind for CBOR encoding"}
	}
	return buf, nil
}

func appendHead(buf []byte, major byte, n uint64) []byte {
	head := major << 5
	switch {
	case n < 24:
		return append(buf, head|byte(n))
	case n <= 0xff:
		return append(buf, head|24, byte(n))
	case n <= 0xffff:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		return append(append(buf, head|25), b...)
	case n <= 0xffffffff:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		return append(append(buf, head|26), b...)
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, n)
		return append(append(buf, head|27), b...)
	}
}
