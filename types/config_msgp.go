package types

import "github.com/tinylib/msgp/msgp"

// Config carries an interface field, so its codec is written by hand in the
// same tuple layout msgp generates. Status is encoded as [phase, count].

// MarshalMsg implements msgp.Marshaler
func (z *Config) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	// array header, size 9
	o = append(o, 0x99)
	o = msgp.AppendString(o, z.Owner)
	o = msgp.AppendUint16(o, z.Total)
	o = msgp.AppendUint16(o, z.Dealer)
	o = msgp.AppendUint16(o, z.Threshold)
	if z.Fee == nil {
		o = msgp.AppendNil(o)
	} else {
		o, err = z.Fee.MarshalMsg(o)
		if err != nil {
			return
		}
	}
	// array header, size 2
	o = append(o, 0x92)
	o = msgp.AppendUint8(o, uint8(z.Phase()))
	o = msgp.AppendUint16(o, statusCount(z.Status))
	o = msgp.AppendUint64(o, z.Epoch)
	o = msgp.AppendUint64(o, z.DkgTimeout)
	o = msgp.AppendUint64(o, z.PhaseStartHeight)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Config) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var zb0001 uint32
	zb0001, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if zb0001 != 9 {
		err = msgp.ArrayError{Wanted: 9, Got: zb0001}
		return
	}
	z.Owner, bts, err = msgp.ReadStringBytes(bts)
	if err != nil {
		return
	}
	z.Total, bts, err = msgp.ReadUint16Bytes(bts)
	if err != nil {
		return
	}
	z.Dealer, bts, err = msgp.ReadUint16Bytes(bts)
	if err != nil {
		return
	}
	z.Threshold, bts, err = msgp.ReadUint16Bytes(bts)
	if err != nil {
		return
	}
	if msgp.IsNil(bts) {
		bts, err = msgp.ReadNilBytes(bts)
		if err != nil {
			return
		}
		z.Fee = nil
	} else {
		if z.Fee == nil {
			z.Fee = new(Coin)
		}
		bts, err = z.Fee.UnmarshalMsg(bts)
		if err != nil {
			return
		}
	}
	var zb0002 uint32
	zb0002, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if zb0002 != 2 {
		err = msgp.ArrayError{Wanted: 2, Got: zb0002}
		return
	}
	var phase uint8
	phase, bts, err = msgp.ReadUint8Bytes(bts)
	if err != nil {
		return
	}
	var count uint16
	count, bts, err = msgp.ReadUint16Bytes(bts)
	if err != nil {
		return
	}
	z.Status, err = NewStatus(Phase(phase), count)
	if err != nil {
		return
	}
	z.Epoch, bts, err = msgp.ReadUint64Bytes(bts)
	if err != nil {
		return
	}
	z.DkgTimeout, bts, err = msgp.ReadUint64Bytes(bts)
	if err != nil {
		return
	}
	z.PhaseStartHeight, bts, err = msgp.ReadUint64Bytes(bts)
	if err != nil {
		return
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z *Config) Msgsize() (s int) {
	s = 1 + msgp.StringPrefixSize + len(z.Owner) + 3*msgp.Uint16Size
	if z.Fee == nil {
		s += msgp.NilSize
	} else {
		s += z.Fee.Msgsize()
	}
	s += 1 + msgp.Uint8Size + msgp.Uint16Size + 3*msgp.Uint64Size
	return
}
