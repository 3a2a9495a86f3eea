package common

import "encoding/binary"

// Serializer converts a type to and from its persisted byte representation.
// All representations are fixed-size.
type Serializer[T any] interface {
	ToBytes(T) []byte
	CopyBytes(T, []byte)
	FromBytes([]byte) T
	Size() int
}

// AddressSerializer is a Serializer of the Address type
type AddressSerializer struct{}

func (a AddressSerializer) ToBytes(address Address) []byte {
	return address[:]
}
func (a AddressSerializer) CopyBytes(address Address, out []byte) {
	copy(out, address[:])
}
func (a AddressSerializer) FromBytes(bytes []byte) Address {
	var address Address
	copy(address[:], bytes)
	return address
}
func (a AddressSerializer) Size() int {
	return 20
}

// KeySerializer is a Serializer of the Key type
type KeySerializer struct{}

func (a KeySerializer) ToBytes(key Key) []byte {
	return key[:]
}
func (a KeySerializer) CopyBytes(key Key, out []byte) {
	copy(out, key[:])
}
func (a KeySerializer) FromBytes(bytes []byte) Key {
	var key Key
	copy(key[:], bytes)
	return key
}
func (a KeySerializer) Size() int {
	return 32
}

// ValueSerializer is a Serializer of the Value type
type ValueSerializer struct{}

func (a ValueSerializer) ToBytes(value Value) []byte {
	return value[:]
}
func (a ValueSerializer) CopyBytes(value Value, out []byte) {
	copy(out, value[:])
}
func (a ValueSerializer) FromBytes(bytes []byte) Value {
	var value Value
	copy(value[:], bytes)
	return value
}
func (a ValueSerializer) Size() int {
	return 32
}

// HashSerializer is a Serializer of the Hash type
type HashSerializer struct{}

func (a HashSerializer) ToBytes(hash Hash) []byte {
	return hash[:]
}
func (a HashSerializer) CopyBytes(hash Hash, out []byte) {
	copy(out, hash[:])
}
func (a HashSerializer) FromBytes(bytes []byte) Hash {
	var hash Hash
	copy(hash[:], bytes)
	return hash
}
func (a HashSerializer) Size() int {
	return 32
}

// Identifier64Serializer is a Serializer of uint64 identifiers.
// It uses the big-endian byte order so that serialized identifiers
// iterate in their numeric order when used as database keys.
type Identifier64Serializer struct{}

func (a Identifier64Serializer) ToBytes(id uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte{}, id)
}
func (a Identifier64Serializer) CopyBytes(id uint64, out []byte) {
	binary.BigEndian.PutUint64(out[0:8], id)
}
func (a Identifier64Serializer) FromBytes(bytes []byte) uint64 {
	return binary.BigEndian.Uint64(bytes)
}
func (a Identifier64Serializer) Size() int {
	return 8
}

// Identifier32Serializer is a Serializer of uint32 identifiers.
type Identifier32Serializer struct{}

func (a Identifier32Serializer) ToBytes(id uint32) []byte {
	return binary.BigEndian.AppendUint32([]byte{}, id)
}
func (a Identifier32Serializer) CopyBytes(id uint32, out []byte) {
	binary.BigEndian.PutUint32(out[0:4], id)
}
func (a Identifier32Serializer) FromBytes(bytes []byte) uint32 {
	return binary.BigEndian.Uint32(bytes)
}
func (a Identifier32Serializer) Size() int {
	return 4
}
