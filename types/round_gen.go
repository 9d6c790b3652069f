package types

import "github.com/tinylib/msgp/msgp"

// MarshalMsg implements msgp.Marshaler
func (z *ShareSig) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	// array header, size 3
	o = append(o, 0x93)
	o = msgp.AppendString(o, z.Sender)
	o = msgp.AppendUint16(o, z.Index)
	o = msgp.AppendBytes(o, z.Sig)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *ShareSig) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var zb0001 uint32
	zb0001, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if zb0001 != 3 {
		err = msgp.ArrayError{Wanted: 3, Got: zb0001}
		return
	}
	z.Sender, bts, err = msgp.ReadStringBytes(bts)
	if err != nil {
		return
	}
	z.Index, bts, err = msgp.ReadUint16Bytes(bts)
	if err != nil {
		return
	}
	z.Sig, bts, err = msgp.ReadBytesBytes(bts, z.Sig)
	if err != nil {
		return
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z *ShareSig) Msgsize() (s int) {
	s = 1 + msgp.StringPrefixSize + len(z.Sender) + msgp.Uint16Size + msgp.BytesPrefixSize + len(z.Sig)
	return
}

// MarshalMsg implements msgp.Marshaler
func (z *DistributedShareData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	// array header, size 8
	o = append(o, 0x98)
	o = msgp.AppendUint64(o, z.Round)
	o = msgp.AppendUint64(o, z.Epoch)
	o = msgp.AppendBytes(o, z.Input)
	o = msgp.AppendArrayHeader(o, uint32(len(z.Sigs)))
	for za0001 := range z.Sigs {
		o, err = z.Sigs[za0001].MarshalMsg(o)
		if err != nil {
			return
		}
	}
	o = msgp.AppendUint8(o, uint8(z.State))
	o = msgp.AppendBytes(o, z.CombinedSig)
	o = msgp.AppendBytes(o, z.CombinedPubkey)
	o = msgp.AppendBytes(o, z.Randomness)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *DistributedShareData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var zb0001 uint32
	zb0001, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if zb0001 != 8 {
		err = msgp.ArrayError{Wanted: 8, Got: zb0001}
		return
	}
	z.Round, bts, err = msgp.ReadUint64Bytes(bts)
	if err != nil {
		return
	}
	z.Epoch, bts, err = msgp.ReadUint64Bytes(bts)
	if err != nil {
		return
	}
	z.Input, bts, err = msgp.ReadBytesBytes(bts, z.Input)
	if err != nil {
		return
	}
	var zb0002 uint32
	zb0002, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if cap(z.Sigs) >= int(zb0002) {
		z.Sigs = (z.Sigs)[:zb0002]
	} else {
		z.Sigs = make([]ShareSig, zb0002)
	}
	for za0001 := range z.Sigs {
		bts, err = z.Sigs[za0001].UnmarshalMsg(bts)
		if err != nil {
			return
		}
	}
	{
		var zb0003 uint8
		zb0003, bts, err = msgp.ReadUint8Bytes(bts)
		if err != nil {
			return
		}
		z.State = RoundState(zb0003)
	}
	z.CombinedSig, bts, err = msgp.ReadBytesBytes(bts, z.CombinedSig)
	if err != nil {
		return
	}
	z.CombinedPubkey, bts, err = msgp.ReadBytesBytes(bts, z.CombinedPubkey)
	if err != nil {
		return
	}
	z.Randomness, bts, err = msgp.ReadBytesBytes(bts, z.Randomness)
	if err != nil {
		return
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z *DistributedShareData) Msgsize() (s int) {
	s = 1 + msgp.Uint64Size + msgp.Uint64Size + msgp.BytesPrefixSize + len(z.Input) + msgp.ArrayHeaderSize
	for za0001 := range z.Sigs {
		s += z.Sigs[za0001].Msgsize()
	}
	s += msgp.Uint8Size + msgp.BytesPrefixSize + len(z.CombinedSig) + msgp.BytesPrefixSize + len(z.CombinedPubkey) + msgp.BytesPrefixSize + len(z.Randomness)
	return
}
