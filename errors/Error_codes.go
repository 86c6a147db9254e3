package errors

import "strconv"

// ERR enumerates the error codes used throughout the settlement core.
type ERR int32

//nolint:revive,stylecheck // names follow the wire enum naming used across the codebase
const (
	ERR_UNKNOWN                 ERR = 0
	ERR_INVALID_ARGUMENT        ERR = 1
	ERR_NOT_FOUND               ERR = 2
	ERR_PROCESSING              ERR = 3
	ERR_CONFIGURATION           ERR = 4
	ERR_ERROR                   ERR = 9
	ERR_TX_INVALID              ERR = 31
	ERR_TX_INVALID_DOUBLE_SPEND ERR = 32
	ERR_TX_INVALID_SIGNATURE    ERR = 33
	ERR_UTXO_UNKNOWN            ERR = 40
	ERR_UTXO_DUPLICATE          ERR = 41
	ERR_INVARIANT_VIOLATION     ERR = 50
)

var ERR_name = map[int32]string{ //nolint:revive,stylecheck
	0:  "UNKNOWN",
	1:  "INVALID_ARGUMENT",
	2:  "NOT_FOUND",
	3:  "PROCESSING",
	4:  "CONFIGURATION",
	9:  "ERROR",
	31: "TX_INVALID",
	32: "TX_INVALID_DOUBLE_SPEND",
	33: "TX_INVALID_SIGNATURE",
	40: "UTXO_UNKNOWN",
	41: "UTXO_DUPLICATE",
	50: "INVARIANT_VIOLATION",
}

var ERR_value = func() map[string]int32 { //nolint:revive,stylecheck
	m := make(map[string]int32, len(ERR_name))
	for k, v := range ERR_name {
		m[v] = k
	}

	return m
}()

func (x ERR) String() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return strconv.Itoa(int(x))
}

func (x ERR) Enum() *ERR {
	p := new(ERR)
	*p = x

	return p
}
