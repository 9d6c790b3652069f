package types

import "github.com/tinylib/msgp/msgp"

// MarshalMsg implements msgp.Marshaler
func (z *DealerShare) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	// array header, size 2
	o = append(o, 0x92)
	o = msgp.AppendArrayHeader(o, uint32(len(z.Commits)))
	for za0001 := range z.Commits {
		o = msgp.AppendBytes(o, z.Commits[za0001])
	}
	o = msgp.AppendArrayHeader(o, uint32(len(z.Rows)))
	for za0002 := range z.Rows {
		o = msgp.AppendBytes(o, z.Rows[za0002])
	}
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *DealerShare) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var zb0001 uint32
	zb0001, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if zb0001 != 2 {
		err = msgp.ArrayError{Wanted: 2, Got: zb0001}
		return
	}
	var zb0002 uint32
	zb0002, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if cap(z.Commits) >= int(zb0002) {
		z.Commits = (z.Commits)[:zb0002]
	} else {
		z.Commits = make([][]byte, zb0002)
	}
	for za0001 := range z.Commits {
		z.Commits[za0001], bts, err = msgp.ReadBytesBytes(bts, z.Commits[za0001])
		if err != nil {
			return
		}
	}
	var zb0003 uint32
	zb0003, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if cap(z.Rows) >= int(zb0003) {
		z.Rows = (z.Rows)[:zb0003]
	} else {
		z.Rows = make([][]byte, zb0003)
	}
	for za0002 := range z.Rows {
		z.Rows[za0002], bts, err = msgp.ReadBytesBytes(bts, z.Rows[za0002])
		if err != nil {
			return
		}
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z *DealerShare) Msgsize() (s int) {
	s = 1 + msgp.ArrayHeaderSize
	for za0001 := range z.Commits {
		s += msgp.BytesPrefixSize + len(z.Commits[za0001])
	}
	s += msgp.ArrayHeaderSize
	for za0002 := range z.Rows {
		s += msgp.BytesPrefixSize + len(z.Rows[za0002])
	}
	return
}

// MarshalMsg implements msgp.Marshaler
func (z *RowShare) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	// array header, size 1
	o = append(o, 0x91)
	o = msgp.AppendBytes(o, z.PkShare)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *RowShare) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var zb0001 uint32
	zb0001, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if zb0001 != 1 {
		err = msgp.ArrayError{Wanted: 1, Got: zb0001}
		return
	}
	z.PkShare, bts, err = msgp.ReadBytesBytes(bts, z.PkShare)
	if err != nil {
		return
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z *RowShare) Msgsize() (s int) {
	s = 1 + msgp.BytesPrefixSize + len(z.PkShare)
	return
}

// MarshalMsg implements msgp.Marshaler
func (z *Member) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	// array header, size 6
	o = append(o, 0x96)
	o = msgp.AppendUint16(o, z.Index)
	o = msgp.AppendString(o, z.Address)
	o = msgp.AppendBytes(o, z.PubKey)
	if z.SharedDealer == nil {
		o = msgp.AppendNil(o)
	} else {
		o, err = z.SharedDealer.MarshalMsg(o)
		if err != nil {
			return
		}
	}
	if z.SharedRow == nil {
		o = msgp.AppendNil(o)
	} else {
		o, err = z.SharedRow.MarshalMsg(o)
		if err != nil {
			return
		}
	}
	o = msgp.AppendBool(o, z.Deleted)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Member) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var zb0001 uint32
	zb0001, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if zb0001 != 6 {
		err = msgp.ArrayError{Wanted: 6, Got: zb0001}
		return
	}
	z.Index, bts, err = msgp.ReadUint16Bytes(bts)
	if err != nil {
		return
	}
	z.Address, bts, err = msgp.ReadStringBytes(bts)
	if err != nil {
		return
	}
	z.PubKey, bts, err = msgp.ReadBytesBytes(bts, z.PubKey)
	if err != nil {
		return
	}
	if msgp.IsNil(bts) {
		bts, err = msgp.ReadNilBytes(bts)
		if err != nil {
			return
		}
		z.SharedDealer = nil
	} else {
		if z.SharedDealer == nil {
			z.SharedDealer = new(DealerShare)
		}
		bts, err = z.SharedDealer.UnmarshalMsg(bts)
		if err != nil {
			return
		}
	}
	if msgp.IsNil(bts) {
		bts, err = msgp.ReadNilBytes(bts)
		if err != nil {
			return
		}
		z.SharedRow = nil
	} else {
		if z.SharedRow == nil {
			z.SharedRow = new(RowShare)
		}
		bts, err = z.SharedRow.UnmarshalMsg(bts)
		if err != nil {
			return
		}
	}
	z.Deleted, bts, err = msgp.ReadBoolBytes(bts)
	if err != nil {
		return
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z *Member) Msgsize() (s int) {
	s = 1 + msgp.Uint16Size + msgp.StringPrefixSize + len(z.Address) + msgp.BytesPrefixSize + len(z.PubKey)
	if z.SharedDealer == nil {
		s += msgp.NilSize
	} else {
		s += z.SharedDealer.Msgsize()
	}
	if z.SharedRow == nil {
		s += msgp.NilSize
	} else {
		s += z.SharedRow.Msgsize()
	}
	s += msgp.BoolSize
	return
}
