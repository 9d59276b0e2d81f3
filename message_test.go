package amp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/amp/jsonval"
)

func TestEmptyMessage(t *testing.T) {
	m := New()
	assert.Equal(t, 0, m.Count())

	_, ok := m.First()
	assert.False(t, ok, "First on empty message")
	_, ok = m.Next()
	assert.False(t, ok, "Next on empty message")

	var zero Message
	_, ok = zero.First()
	assert.False(t, ok, "zero Message must be usable")
	require.NoError(t, zero.PushString("x"))
	f, ok := zero.First()
	require.True(t, ok)
	assert.Equal(t, String, f.Type())
}

func TestPushKeepsOrderAndTypes(t *testing.T) {
	m := New()
	require.NoError(t, m.PushBlob([]byte{1, 2, 3}))
	require.NoError(t, m.PushString("hello"))
	require.NoError(t, m.PushBigInt(123451234512345))
	require.NoError(t, m.PushJSON(jsonval.MustParse(`{"payload":"value"}`)))
	require.Equal(t, 4, m.Count())

	types := []Type{Blob, String, BigInt, JSON}
	sizes := []int{3, 5, 8, 19}
	for i, f := range m.All() {
		assert.Equal(t, types[i], f.Type(), "field %d", i)
		assert.Equal(t, sizes[i], f.Size(), "field %d", i)
	}

	f, _ := m.Field(2)
	n, ok := f.AsBigInt()
	require.True(t, ok)
	assert.Equal(t, int64(123451234512345), n)

	_, ok = f.AsString()
	assert.False(t, ok, "bigint field must not read as string")

	_, ok = m.Field(4)
	assert.False(t, ok)
	_, ok = m.Field(-1)
	assert.False(t, ok)
}

func TestPushCopiesInput(t *testing.T) {
	blob := []byte{1, 2, 3}
	doc := jsonval.NewObject().Set("k", jsonval.NewString("v"))

	m := New()
	require.NoError(t, m.PushBlob(blob))
	require.NoError(t, m.PushJSON(doc))

	blob[0] = 9
	doc.Set("k", jsonval.NewString("changed"))

	f, _ := m.Field(0)
	b, _ := f.AsBlob()
	assert.Equal(t, []byte{1, 2, 3}, b)

	b[1] = 9 // accessor returns a copy
	b2, _ := f.AsBlob()
	assert.Equal(t, []byte{1, 2, 3}, b2)

	f, _ = m.Field(1)
	v, _ := f.AsJSON()
	assert.Equal(t, `{"k":"v"}`, v.String())
}

func TestPushNilValues(t *testing.T) {
	m := New()
	require.NoError(t, m.PushBlob(nil))
	require.NoError(t, m.PushJSON(nil))

	f, _ := m.Field(0)
	b, ok := f.AsBlob()
	require.True(t, ok)
	assert.NotNil(t, b)
	assert.Empty(t, b)

	f, _ = m.Field(1)
	assert.Equal(t, "null", f.String())
	assert.Equal(t, 4, f.Size())
}

func TestPushCapacity(t *testing.T) {
	m := New()
	for i := 0; i < MaxFields; i++ {
		require.NoError(t, m.PushBigInt(int64(i)))
	}
	before, err := m.Encode()
	require.NoError(t, err)

	require.ErrorIs(t, m.PushString("one too many"), ErrCapacity)
	require.ErrorIs(t, m.PushBlob([]byte{1}), ErrCapacity)
	require.ErrorIs(t, m.PushBigInt(1), ErrCapacity)
	require.ErrorIs(t, m.PushJSON(jsonval.NewNull()), ErrCapacity)
	assert.Equal(t, MaxFields, m.Count())

	after, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed push must not change the message")
}

func TestEmbeddedCursor(t *testing.T) {
	m := New()
	require.NoError(t, m.PushString("a"))
	require.NoError(t, m.PushString("b"))

	_, ok := m.Next()
	assert.False(t, ok, "Next before First")

	f, ok := m.First()
	require.True(t, ok)
	assert.Equal(t, "a", f.String())
	f, ok = m.Next()
	require.True(t, ok)
	assert.Equal(t, "b", f.String())
	_, ok = m.Next()
	assert.False(t, ok, "past the tail")
	_, ok = m.Next()
	assert.False(t, ok, "stays exhausted")

	f, ok = m.First()
	require.True(t, ok, "First resets")
	assert.Equal(t, "a", f.String())
}

func TestCopiedMessageIteratesOwnFields(t *testing.T) {
	m := New()
	require.NoError(t, m.PushString("a"))

	cp := *m
	require.NoError(t, cp.PushString("b"))
	m.Release()

	f, ok := cp.First()
	require.True(t, ok)
	assert.Equal(t, "a", f.String())
	f, ok = cp.Next()
	require.True(t, ok)
	assert.Equal(t, "b", f.String())
	_, ok = cp.Next()
	assert.False(t, ok)

	_, ok = m.First()
	assert.False(t, ok, "original was released")

	var zero Message
	require.NoError(t, zero.PushBigInt(7))
	f, ok = zero.First()
	require.True(t, ok)
	n, _ := f.AsBigInt()
	assert.Equal(t, int64(7), n)
}

func TestIndependentCursors(t *testing.T) {
	m := New()
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, m.PushString(s))
	}

	c1, c2 := m.Cursor(), m.Cursor()
	f1, _ := c1.First()
	f1, _ = c1.Next()
	f2, _ := c2.First()
	assert.Equal(t, "b", f1.String())
	assert.Equal(t, "a", f2.String())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := m.Cursor()
			n := 0
			for _, ok := c.First(); ok; _, ok = c.Next() {
				n++
			}
			assert.Equal(t, 3, n)
		}()
	}
	wg.Wait()
}

func TestAllStopsEarly(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		require.NoError(t, m.PushBigInt(int64(i)))
	}
	seen := 0
	for i := range m.All() {
		if i == 2 {
			break
		}
		seen++
	}
	assert.Equal(t, 2, seen)
}

func TestRelease(t *testing.T) {
	m := New()
	require.NoError(t, m.PushString("a"))
	m.First()
	m.Release()

	assert.Equal(t, 0, m.Count())
	_, ok := m.Next()
	assert.False(t, ok)
	require.NoError(t, m.PushString("reuse"))
	assert.Equal(t, 1, m.Count())
}

func TestFieldString(t *testing.T) {
	cases := []struct {
		f    Field
		want string
	}{
		{NewBlob([]byte{1, 2, 0xff}), "<Buffer 01 02 ff>"},
		{NewString("hello"), "hello"},
		{NewBigInt(-5), "-5"},
		{NewJSON(jsonval.MustParse(`{"a":[1,true]}`)), `{"a":[1,true]}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.f.String())
	}
	assert.Equal(t, "bigint", BigInt.String())
}

func TestEqual(t *testing.T) {
	a, b := New(), New()
	require.NoError(t, a.PushString("x"))
	require.NoError(t, b.PushBlob([]byte("x")))
	assert.False(t, Equal(a, b), "same bytes, different types")

	c := New()
	require.NoError(t, c.PushString("x"))
	assert.True(t, Equal(a, c))
}
