package types

import "github.com/tinylib/msgp/msgp"

// MarshalMsg implements msgp.Marshaler
func (z Coin) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	// array header, size 2
	o = append(o, 0x92)
	o = msgp.AppendString(o, z.Denom)
	o = msgp.AppendUint64(o, z.Amount)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Coin) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var zb0001 uint32
	zb0001, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if zb0001 != 2 {
		err = msgp.ArrayError{Wanted: 2, Got: zb0001}
		return
	}
	z.Denom, bts, err = msgp.ReadStringBytes(bts)
	if err != nil {
		return
	}
	z.Amount, bts, err = msgp.ReadUint64Bytes(bts)
	if err != nil {
		return
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z Coin) Msgsize() (s int) {
	s = 1 + msgp.StringPrefixSize + len(z.Denom) + msgp.Uint64Size
	return
}
