package cache

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/HugoDaniel/shiba/internal/shader"
)

func TestKey(t *testing.T) {
	a := Key([]byte("ab"), []byte("c"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key([]byte("ab"), []byte("c")))
	assert.NotEqual(t, a, Key([]byte("a"), []byte("bc")))
	assert.NotEqual(t, a, Key([]byte("abc")))
	assert.NotEqual(t, Key(), Key(nil))
}

func TestKeyEncoding(t *testing.T) {
	// Each part is preceded by its length as a little-endian uint64.
	data := append([]byte{3, 0, 0, 0, 0, 0, 0, 0}, "abc"...)
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 0)
	sum := blake2b.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), Key([]byte("abc"), nil))
}

func TestStoreAndLoad(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "nested", "cache"))
	require.NoError(t, err)

	d := &shader.Descriptor{
		GLSLVersion: "450",
		Programs:    shader.Programs{{Name: "0", Fragment: "void main(){}"}},
		Variables: []shader.Variable{{
			Kind: shader.KindUniform, Active: true, Name: "t", TypeName: "float",
			Annotations: []shader.UniformAnnotation{{Kind: shader.AnnotationTime}},
		}},
	}
	key := Key([]byte("source"))

	var missing shader.Descriptor
	ok, err := c.Load(key, &missing)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Store(key, d))
	assert.FileExists(t, filepath.Join(c.Dir(), key, EntryFilename))

	var loaded shader.Descriptor
	ok, err = c.Load(key, &loaded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, d, &loaded)

	require.NoError(t, c.Remove(key))
	ok, err = c.Load(key, &loaded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key := Key([]byte("x"))
	require.NoError(t, os.MkdirAll(filepath.Join(c.Dir(), key), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), key, EntryFilename), []byte("{"), 0o644))

	var d shader.Descriptor
	ok, err := c.Load(key, &d)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentStores(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key := Key([]byte("same"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Store(key, map[string]int{"n": 1}))
		}()
	}
	wg.Wait()

	var v map[string]int
	ok, err := c.Load(key, &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]int{"n": 1}, v)

	entries, err := os.ReadDir(filepath.Join(c.Dir(), key))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}
