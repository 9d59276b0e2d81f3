package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/unkn0wn-root/amp"
)

type reading struct {
	Sensor string    `json:"sensor" cbor:"sensor" msgpack:"sensor"`
	Value  float64   `json:"value" cbor:"value" msgpack:"value"`
	At     time.Time `json:"at" cbor:"at" msgpack:"at"`
}

func sample() reading {
	return reading{Sensor: "t1", Value: 21.5, At: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func roundTripBlob[V any](t *testing.T, c Codec[V], v V) V {
	t.Helper()
	m := amp.New()
	require.NoError(t, Push(m, c, v))

	buf, err := m.Encode()
	require.NoError(t, err)
	got, rest, err := amp.Decode(buf)
	require.NoError(t, err)
	require.Empty(t, rest)

	f, ok := got.First()
	require.True(t, ok)
	require.Equal(t, amp.Blob, f.Type())
	out, err := Value(f, c)
	require.NoError(t, err)
	return out
}

func TestBlobCodecs(t *testing.T) {
	want := sample()

	t.Run("json", func(t *testing.T) {
		got := roundTripBlob[reading](t, JSON[reading]{}, want)
		assert.True(t, want.At.Equal(got.At))
		assert.Equal(t, want.Sensor, got.Sensor)
		assert.Equal(t, want.Value, got.Value)
	})
	t.Run("cbor", func(t *testing.T) {
		got := roundTripBlob[reading](t, MustCBOR[reading](true), want)
		assert.True(t, want.At.Equal(got.At))
		assert.Equal(t, want.Sensor, got.Sensor)
	})
	t.Run("msgpack", func(t *testing.T) {
		got := roundTripBlob[reading](t, Msgpack[reading]{}, want)
		assert.True(t, want.At.Equal(got.At))
		assert.Equal(t, want.Value, got.Value)
	})
	t.Run("bytes", func(t *testing.T) {
		got := roundTripBlob[[]byte](t, Bytes{}, []byte{0xCA, 0xFE})
		assert.Equal(t, []byte{0xCA, 0xFE}, got)
	})
	t.Run("string", func(t *testing.T) {
		got := roundTripBlob[string](t, String{}, "plain")
		assert.Equal(t, "plain", got)
	})
}

func TestProtobufBlob(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	got := roundTripBlob[*wrapperspb.StringValue](t, c, wrapperspb.String("over the wire"))
	assert.Equal(t, "over the wire", got.GetValue())

	sc := NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })
	in, err := structpb.NewStruct(map[string]any{"k": "v", "n": 2.0})
	require.NoError(t, err)
	out := roundTripBlob[*structpb.Struct](t, sc, in)
	assert.Equal(t, "v", out.GetFields()["k"].GetStringValue())
	assert.Equal(t, 2.0, out.GetFields()["n"].GetNumberValue())
}

func TestCBORDeterministic(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	a, err := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		b, err := c.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestCBORDeterministicRejectsRepeatedKeys(t *testing.T) {
	dup := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02} // {"a":1,"a":2}

	_, err := MustCBOR[map[string]int](true).Decode(dup)
	var dupErr *cbor.DupMapKeyError
	require.ErrorAs(t, err, &dupErr)

	got, err := MustCBOR[map[string]int](false).Decode(dup)
	require.NoError(t, err)
	assert.Equal(t, 2, got["a"])
}

func TestMsgpackSortedKeys(t *testing.T) {
	c := Msgpack[map[string]int]{}
	in := map[string]int{"delta": 4, "alpha": 1, "charlie": 3, "bravo": 2}

	first := amp.New()
	require.NoError(t, Push(first, c, in))
	want, err := first.Encode()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		m := amp.New()
		require.NoError(t, Push(m, c, in))
		got, err := m.Encode()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	out := roundTripBlob[map[string]int](t, c, in)
	assert.Equal(t, in, out)
}

func TestMsgpackRejectsTrailingBytes(t *testing.T) {
	c := Msgpack[int]{}
	b, err := c.Encode(7)
	require.NoError(t, err)

	_, err = c.Decode(append(b, 0x01))
	require.ErrorIs(t, err, ErrTrailingBytes)

	v, err := c.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestMsgpackSmallIntsStayBlobs(t *testing.T) {
	// 's', 'b' and 'j' are positive fixints; alone they are too short to
	// read as a marker.
	for _, n := range []int{'s', 'b', 'j'} {
		got := roundTripBlob[int](t, Msgpack[int]{}, n)
		assert.Equal(t, n, got)
	}
}

func TestValueRejectsNonBlob(t *testing.T) {
	_, err := Value[string](amp.NewString("x"), String{})
	require.ErrorIs(t, err, ErrNotBlob)
}

func TestPushCapacity(t *testing.T) {
	m := amp.New()
	for i := 0; i < amp.MaxFields; i++ {
		require.NoError(t, Push[string](m, String{}, "x"))
	}
	require.ErrorIs(t, Push[string](m, String{}, "x"), amp.ErrCapacity)
}

type failing struct{}

func (failing) Encode(int) ([]byte, error) { return nil, errors.New("boom") }
func (failing) Decode([]byte) (int, error) { return 0, nil }

func TestPushEncodeError(t *testing.T) {
	m := amp.New()
	require.Error(t, Push[int](m, failing{}, 1))
	require.Zero(t, m.Count())
}

func TestLimit(t *testing.T) {
	c := Limit[[]byte]{Inner: Bytes{}, MaxDecode: 4}
	_, err := c.Decode([]byte("12345"))
	require.ErrorIs(t, err, ErrTooLarge)

	b, err := c.Decode([]byte("1234"))
	require.NoError(t, err)
	require.Equal(t, []byte("1234"), b)

	off := Limit[[]byte]{Inner: Bytes{}}
	_, err = off.Decode(make([]byte, 1<<16))
	require.NoError(t, err)
}

func TestMessageCodec(t *testing.T) {
	m := amp.New()
	require.NoError(t, m.PushString("hello"))
	require.NoError(t, m.PushBigInt(-1))

	var c Codec[*amp.Message] = Message{}
	b, err := c.Encode(m)
	require.NoError(t, err)

	got, err := c.Decode(b)
	require.NoError(t, err)
	require.True(t, amp.Equal(m, got))

	_, err = c.Decode(append(b, 0x10))
	require.ErrorIs(t, err, ErrTrailingBytes)

	_, err = c.Decode(b[:len(b)-1])
	require.ErrorIs(t, err, amp.ErrTruncated)
}

func TestZstdBlob(t *testing.T) {
	c, err := NewZstd[reading](JSON[reading]{}, 0)
	require.NoError(t, err)
	defer c.Close()

	want := sample()
	got := roundTripBlob[reading](t, c, want)
	assert.Equal(t, want.Sensor, got.Sensor)
	assert.True(t, want.At.Equal(got.At))
}

func TestZstdAvoidsMarkerAmbiguity(t *testing.T) {
	// plain, this blob would decode as a String field
	c, err := NewZstd[string](String{}, 0)
	require.NoError(t, err)
	defer c.Close()

	got := roundTripBlob[string](t, c, "s:looks typed")
	assert.Equal(t, "s:looks typed", got)
}

func TestZstdLimit(t *testing.T) {
	c, err := NewZstd[[]byte](Bytes{}, 1024)
	require.NoError(t, err)
	defer c.Close()

	b, err := c.Encode(make([]byte, 1<<20))
	require.NoError(t, err)
	assert.Less(t, len(b), 1<<12, "zeros compress")

	_, err = c.Decode(b)
	require.ErrorIs(t, err, ErrTooLarge)

	small, err := c.Encode([]byte("tiny"))
	require.NoError(t, err)
	out, err := c.Decode(small)
	require.NoError(t, err)
	assert.Equal(t, []byte("tiny"), out)

	_, err = c.Decode([]byte("not zstd"))
	require.Error(t, err)

	_, err = NewZstd[[]byte](nil, 0)
	require.Error(t, err)
}
