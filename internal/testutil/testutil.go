// Grounded on testing/testing_util/testing_utils.go and the
// go-bustub testingutils package its tests were originally written
// against: a minimal reflect.DeepEqual/file-line assertion helper,
// no testify.

package testutil

import (
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

// Ok fails the test immediately if err is non-nil.
func Ok(tb testing.TB, err error) {
	if err != nil {
		_, file, line, _ := runtime.Caller(1)
		tb.Fatalf("%s:%d: unexpected error: %s", filepath.Base(file), line, err.Error())
	}
}

// Equals fails the test immediately if exp and act are not deeply equal.
func Equals(tb testing.TB, exp, act interface{}) {
	if !reflect.DeepEqual(exp, act) {
		_, file, line, _ := runtime.Caller(1)
		tb.Fatalf("%s:%d:\n\n\texp: %#v\n\n\tgot: %#v\n\n", filepath.Base(file), line, exp, act)
	}
}

// Assert fails the test immediately with the formatted message if
// condition is false.
func Assert(tb testing.TB, condition bool, msg string, v ...interface{}) {
	if !condition {
		_, file, line, _ := runtime.Caller(1)
		tb.Fatalf("%s:%d: "+msg, append([]interface{}{filepath.Base(file), line}, v...)...)
	}
}
