package randvar

import (
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// AllDTypes is the fixed, ordered catalogue of numeric dtypes a random variable may
// be typed with. A dtype may be referenced by name or by its index in this
// catalogue; both forms resolve identically. The order is part of the contract:
// nodes record the catalogue index of their resolved dtype.
var AllDTypes = []dtypes.DType{
	dtypes.Int8,
	dtypes.Int16,
	dtypes.Int32,
	dtypes.Int64,
	dtypes.Uint8,
	dtypes.Uint16,
	dtypes.Uint32,
	dtypes.Uint64,
	dtypes.Float16,
	dtypes.BFloat16,
	dtypes.Float32,
	dtypes.Float64,
	dtypes.Complex64,
	dtypes.Complex128,
}

// dtypeIndices maps catalogue dtypes back to their index.
var dtypeIndices = func() map[dtypes.DType]int {
	indices := make(map[dtypes.DType]int, len(AllDTypes))
	for ii, dtype := range AllDTypes {
		indices[dtype] = ii
	}
	return indices
}()

// DTypeSupported returns whether the dtype is in the catalogue of recognized
// numeric dtypes.
func DTypeSupported(dtype dtypes.DType) bool {
	_, found := dtypeIndices[dtype]
	return found
}

// DTypeIndex returns the catalogue index of the dtype, or an error wrapping
// ErrDType if the dtype is not recognized.
func DTypeIndex(dtype dtypes.DType) (int, error) {
	idx, found := dtypeIndices[dtype]
	if !found {
		return 0, errors.Wrapf(ErrDType, "dtype %s is not in the recognized catalogue", dtype)
	}
	return idx, nil
}

// DTypeByIndex returns the dtype at the given catalogue index, or an error
// wrapping ErrDType if out of range.
func DTypeByIndex(index int) (dtypes.DType, error) {
	if index < 0 || index >= len(AllDTypes) {
		return dtypes.InvalidDType, errors.Wrapf(ErrDType, "dtype index %d out of range (catalogue has %d entries)", index, len(AllDTypes))
	}
	return AllDTypes[index], nil
}

// DTypeByName resolves a dtype by its name, case-insensitively, or returns an
// error wrapping ErrDType for names outside the catalogue.
func DTypeByName(name string) (dtypes.DType, error) {
	for _, dtype := range AllDTypes {
		if strings.EqualFold(dtype.String(), name) {
			return dtype, nil
		}
	}
	return dtypes.InvalidDType, errors.Wrapf(ErrDType, "dtype name %q is not in the recognized catalogue", name)
}
