package persist

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func testStores(t *testing.T) map[string]Store {
	mem, err := NewMemLevelStore()
	require.NoError(t, err)
	disk, err := OpenLevelStore(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	stores := map[string]Store{
		"map":          NewMemStore(),
		"leveldb-mem":  mem,
		"leveldb-disk": disk,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStore(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load("3_1")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save("3_1", []byte("hello")))
			require.NoError(t, s.Save("-2_0", []byte("world")))
			got, err := s.Load("3_1")
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), got)

			require.NoError(t, s.Save("3_1", []byte("again")))
			got, err = s.Load("3_1")
			require.NoError(t, err)
			assert.Equal(t, []byte("again"), got)

			require.NoError(t, s.Delete("3_1"))
			require.NoError(t, s.Delete("3_1"), "deleting a missing key is fine")
			_, err = s.Load("3_1")
			assert.ErrorIs(t, err, ErrNotFound)

			got, err = s.Load("-2_0")
			require.NoError(t, err)
			assert.Equal(t, []byte("world"), got)
		})
	}
}

func TestLevelStore_keysAndReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := OpenLevelStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("1_0", []byte{1}))
	require.NoError(t, s.Save("0_3", []byte{2}))
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"0_3", "1_0"}, keys)
	require.NoError(t, s.Close())

	s, err = OpenLevelStore(dir)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load("1_0")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, got)
}

func TestMemStore_copies(t *testing.T) {
	s := NewMemStore()
	buf := []byte("abc")
	require.NoError(t, s.Save("k", buf))
	buf[0] = 'x'
	got, err := s.Load("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
	assert.Equal(t, []string{"k"}, s.Keys())
	assert.Equal(t, 1, s.Len())
}

func TestJSONCodec(t *testing.T) {
	id := uuid.MustParse("5b8a1f52-6d8e-4a4e-9d2c-4f9a3a6c1e70")
	in := &Record{
		Region: -4,
		Index:  2,
		Entities: []EntityRecord{
			{ID: id, Kind: "crate", Offset: fixed.Point26_6{X: 129, Y: -7}, Rotation: 1.5, Payload: []byte{0, 1, 2}},
			{ID: uuid.New(), Offset: fixed.Point26_6{X: 0, Y: 64}},
		},
	}
	var c JSONCodec
	data, err := c.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, in.Version)

	out, err := c.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, "-4_2", out.Key())

	_, err = c.Unmarshal([]byte(`{"version": 99}`))
	assert.ErrorAs(t, err, new(VersionError))
	_, err = c.Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}
