package scanner

func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsHex(b byte) bool {
	return IsDigit(b) || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

func IsCtrl(b byte) bool {
	return b < 32
}
