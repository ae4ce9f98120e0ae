package irformat

import "math/bits"

// NEC: https://www.sbprojects.net/knowledge/ir/nec.php
const NECFrameBits = 32

// NECCode собирает сырой 32-битный код NEC из payload кадра.
// NEC передаёт байты LSB-first, а payload упакован MSB-first в порядке приёма,
// поэтому каждый байт разворачивается. ok=false, если кадр не 32-битный.
// LSB -> MSB: { address (Low), address (High), cmd, ^cmd }
func NECCode(payload []byte, n int) (code uint32, ok bool) {
	if n != NECFrameBits || len(payload) < 4 {
		return 0, false
	}
	for i := 3; i >= 0; i-- {
		code = code<<8 | uint32(bits.Reverse8(payload[i]))
	}
	return code, true
}

// SplitRawNECData разбирает сырой код NEC на адрес и команду с проверкой инверсной команды.
func SplitRawNECData(data uint32) (valid bool, address uint16, command byte) {
	addrLow := byte(data & 0xff)
	addrHigh := byte((data & 0xff00) >> 8)
	command = byte((data & 0xff0000) >> 16)
	invCmd := byte((data & 0xff000000) >> 24)
	address = MakeNECAddress(addrLow, addrHigh)
	return command == ^invCmd, address, command
}

// MakeRawNECData собирает сырой код NEC из адреса и команды.
func MakeRawNECData(address uint16, command byte) uint32 {
	addrLow, addrHigh := SplitNECAddress(address)
	return (uint32(^command) << 24) | (uint32(command) << 16) | (uint32(addrHigh) << 8) | uint32(addrLow)
}

// SplitNECAddress делит адрес на младший и старший байт.
// 8-битный адрес передаётся с инверсией в старшем байте.
func SplitNECAddress(address uint16) (addrLow, addrHigh byte) {
	addrLow = byte(address & 0xff)
	addrHigh = byte((address & 0xff00) >> 8)
	if addrHigh == 0 {
		addrHigh = ^addrLow
	}
	return addrLow, addrHigh
}

// MakeNECAddress собирает адрес из байт. Если старший байт — инверсия младшего,
// это 8-битный адрес (расширенный NEC такой адрес не отличит).
func MakeNECAddress(addrLow, addrHigh byte) uint16 {
	if addrHigh == ^addrLow {
		return uint16(addrLow)
	}
	return (uint16(addrHigh) << 8) | uint16(addrLow)
}
