// Package staging tracks which elements of a halfbuf.Array changed since the
// last upload and writes only those byte ranges to a device buffer.
//
//	st := staging.New(arr)
//	_ = st.Set(3, 1.5)
//	_ = st.Set(4, 2.5)
//	err := st.Flush(ctx, gpuBuffer) // one WriteBuffer call for bytes [6, 10)
package staging
