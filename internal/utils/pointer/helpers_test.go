package pointer

type testStruct struct {
	field string
}
