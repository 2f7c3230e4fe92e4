package gateway

import (
	"encoding/binary"
	"fmt"
	"math/big"

	cosmath "cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"lukechampine.com/uint128"
)

// Args builds the sequential little-endian argument buffer contract calls
// expect: typed values appended in the exact order the target function
// declares them. ArgsReader mirrors it type for type, so encode and decode
// share one schema and a field-order mismatch shows up as a decode error
// instead of a silent misparse.
//
// Strings are a u32 byte length followed by the raw bytes. All integers are
// little-endian; i128 is two's complement.
type Args struct {
	buf []byte
	err error
}

// NewArgs returns an empty argument buffer.
func NewArgs() *Args {
	return &Args{buf: make([]byte, 0, 64)}
}

// Bytes returns the serialized buffer, or the first error recorded while
// appending.
func (a *Args) Bytes() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.buf, nil
}

func (a *Args) AddString(s string) *Args {
	if a.err != nil {
		return a
	}
	a.buf = binary.LittleEndian.AppendUint32(a.buf, uint32(len(s)))
	a.buf = append(a.buf, s...)
	return a
}

func (a *Args) AddU8(v uint8) *Args {
	if a.err != nil {
		return a
	}
	a.buf = append(a.buf, v)
	return a
}

func (a *Args) AddU64(v uint64) *Args {
	if a.err != nil {
		return a
	}
	a.buf = binary.LittleEndian.AppendUint64(a.buf, v)
	return a
}

func (a *Args) AddU128(v uint128.Uint128) *Args {
	if a.err != nil {
		return a
	}
	var raw [16]byte
	v.PutBytes(raw[:])
	a.buf = append(a.buf, raw[:]...)
	return a
}

// AddU256 appends a 256-bit unsigned integer. Values outside [0, 2^256) are
// recorded as an error and surfaced by Bytes.
func (a *Args) AddU256(v cosmath.Int) *Args {
	if a.err != nil {
		return a
	}
	if v.IsNil() || v.IsNegative() {
		a.err = fmt.Errorf("args: u256 value %s must be non-negative", v)
		return a
	}
	be := v.BigInt().Bytes()
	if len(be) > 32 {
		a.err = fmt.Errorf("args: value %s overflows u256", v)
		return a
	}
	var raw [32]byte
	for i, b := range be {
		raw[len(be)-1-i] = b // big-endian digits into little-endian slots
	}
	a.buf = append(a.buf, raw[:]...)
	return a
}

func (a *Args) AddI32(v int32) *Args {
	if a.err != nil {
		return a
	}
	a.buf = binary.LittleEndian.AppendUint32(a.buf, uint32(v))
	return a
}

var (
	i128Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	i128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
)

// AddI128 appends a 128-bit signed integer as two's complement.
func (a *Args) AddI128(v cosmath.Int) *Args {
	if a.err != nil {
		return a
	}
	if v.IsNil() {
		a.err = fmt.Errorf("args: nil i128 value")
		return a
	}
	bi := v.BigInt()
	if bi.Cmp(i128Min) < 0 || bi.Cmp(i128Max) > 0 {
		a.err = fmt.Errorf("args: value %s overflows i128", v)
		return a
	}
	if bi.Sign() < 0 {
		bi = new(big.Int).Add(bi, two128)
	}
	be := bi.Bytes()
	var raw [16]byte
	for i, b := range be {
		raw[len(be)-1-i] = b
	}
	a.buf = append(a.buf, raw[:]...)
	return a
}

func (a *Args) AddBool(v bool) *Args {
	if a.err != nil {
		return a
	}
	if v {
		a.buf = append(a.buf, 1)
	} else {
		a.buf = append(a.buf, 0)
	}
	return a
}

// ArgsReader decodes a buffer written by Args, reading fields back in the
// same declared order.
type ArgsReader struct {
	dec *bin.Decoder
}

// NewArgsReader wraps a result buffer returned by a contract call.
func NewArgsReader(data []byte) *ArgsReader {
	return &ArgsReader{dec: bin.NewBinDecoder(data)}
}

func (r *ArgsReader) NextString() (string, error) {
	var n uint32
	if err := r.dec.Decode(&n); err != nil {
		return "", fmt.Errorf("args: string length: %w", err)
	}
	raw, err := r.dec.ReadNBytes(int(n))
	if err != nil {
		return "", fmt.Errorf("args: string body: %w", err)
	}
	return string(raw), nil
}

func (r *ArgsReader) NextU8() (uint8, error) {
	var v uint8
	if err := r.dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("args: u8: %w", err)
	}
	return v, nil
}

func (r *ArgsReader) NextU64() (uint64, error) {
	var v uint64
	if err := r.dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("args: u64: %w", err)
	}
	return v, nil
}

func (r *ArgsReader) NextU128() (uint128.Uint128, error) {
	var v uint128.Uint128
	if err := r.dec.Decode(&v); err != nil {
		return uint128.Zero, fmt.Errorf("args: u128: %w", err)
	}
	return v, nil
}

func (r *ArgsReader) NextU256() (cosmath.Int, error) {
	raw, err := r.dec.ReadNBytes(32)
	if err != nil {
		return cosmath.Int{}, fmt.Errorf("args: u256: %w", err)
	}
	be := make([]byte, 32)
	for i, b := range raw {
		be[31-i] = b
	}
	return cosmath.NewIntFromBigInt(new(big.Int).SetBytes(be)), nil
}

func (r *ArgsReader) NextI32() (int32, error) {
	var v int32
	if err := r.dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("args: i32: %w", err)
	}
	return v, nil
}

func (r *ArgsReader) NextI128() (cosmath.Int, error) {
	raw, err := r.dec.ReadNBytes(16)
	if err != nil {
		return cosmath.Int{}, fmt.Errorf("args: i128: %w", err)
	}
	be := make([]byte, 16)
	for i, b := range raw {
		be[15-i] = b
	}
	bi := new(big.Int).SetBytes(be)
	if bi.Cmp(i128Max) > 0 {
		bi.Sub(bi, two128)
	}
	return cosmath.NewIntFromBigInt(bi), nil
}

func (r *ArgsReader) NextBool() (bool, error) {
	var v uint8
	if err := r.dec.Decode(&v); err != nil {
		return false, fmt.Errorf("args: bool: %w", err)
	}
	return v != 0, nil
}

// HasRemaining reports whether unread bytes are left in the buffer.
func (r *ArgsReader) HasRemaining() bool {
	return r.dec.HasRemaining()
}
