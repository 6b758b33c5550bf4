package utils

func IntPtr(v int) *int {
	return &v
}
