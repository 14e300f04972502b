package btf

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-btf/gobtf/pkg/btf/rawtype"
)

// rawtype's concrete types embed unexported common/chained structs, so a
// plain cmp.Diff would panic on them; delegate the actual field comparison
// to reflect.DeepEqual (which reaches unexported fields fine) while still
// getting cmp.Diff's readable failure output.
var typeComparer = cmp.Comparer(func(a, b rawtype.Type) bool {
	return reflect.DeepEqual(a, b)
})

// TestBackendEquivalence checks the testable property that cache and mmap
// backends return semantically equal results for the same bytes, across
// every id in the blob.
func TestBackendEquivalence(t *testing.T) {
	blob := buildBaseBlob()

	cacheSpec, err := Open(blob, WithBackend(BackendCache))
	require.NoError(t, err)
	mmapSpec, err := Open(blob, WithBackend(BackendMmap))
	require.NoError(t, err)

	require.Equal(t, cacheSpec.MaxID(), mmapSpec.MaxID())

	for id := rawtype.ID(1); id <= cacheSpec.MaxID(); id++ {
		fromCache, err := cacheSpec.TypeByID(id)
		require.NoError(t, err)
		fromMmap, err := mmapSpec.TypeByID(id)
		require.NoError(t, err)

		if diff := cmp.Diff(fromCache, fromMmap, typeComparer); diff != "" {
			t.Errorf("id %d: cache and mmap backends disagree (-cache +mmap):\n%s", id, diff)
		}

		cacheName, err := cacheSpec.Name(fromCache.NameOff())
		require.NoError(t, err)
		mmapName, err := mmapSpec.Name(fromMmap.NameOff())
		require.NoError(t, err)
		require.Equal(t, cacheName, mmapName)
	}
}
