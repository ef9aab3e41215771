package pathstack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopesNest(t *testing.T) {
	var path Buffer
	path.Reset([]byte("log: "))

	outer := path.Enter()
	outer.AppendString("(name=svc)")
	inner := path.Enter()
	inner.AppendByte('.')
	inner.AppendString("items")
	innermost := path.Enter()
	innermost.AppendIndex(12)
	require.Equal(t, "log: (name=svc).items[12]", path.String())

	innermost.Exit()
	require.Equal(t, "log: (name=svc).items", path.String())
	inner.Exit()
	require.Equal(t, "log: (name=svc)", path.String())
	outer.Exit()
	require.Equal(t, "log: ", path.String())
	require.Equal(t, 5, path.Len())
}

func TestOuterExitAfterInnerAppend(t *testing.T) {
	var path Buffer
	outer := path.Enter()
	outer.AppendString(".a")
	inner := path.Enter()
	inner.AppendString(".b")
	// Exiting the outer scope discards everything appended after it.
	outer.Exit()
	require.Equal(t, "", path.String())
}

var errStop = errors.New("stop")

// walk appends one segment per level and fails at the given depth.
func walk(path *Buffer, depth, failAt int) error {
	scope := path.Enter()
	defer scope.Exit()
	scope.AppendIndex(depth)
	if depth == failAt {
		return errStop
	}
	return walk(path, depth+1, failAt)
}

func TestExitOnErrorReturn(t *testing.T) {
	var path Buffer
	path.Reset([]byte("root"))
	require.ErrorIs(t, walk(&path, 0, 5), errStop)
	require.Equal(t, "root", path.String())
}

func TestExitOnPanic(t *testing.T) {
	var path Buffer
	path.Reset([]byte("root"))
	func() {
		defer func() {
			require.Equal(t, errStop, recover())
		}()
		scope := path.Enter()
		defer scope.Exit()
		scope.AppendString(".deep")
		panic(errStop)
	}()
	require.Equal(t, "root", path.String())
}

func TestResetReusesBuffer(t *testing.T) {
	var path Buffer
	path.Reset([]byte("a long initial prefix"))
	path.Reset([]byte("x"))
	require.Equal(t, []byte("x"), path.Bytes())
}
