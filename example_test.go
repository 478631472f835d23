package halfbuf_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/halfbuf"
	"github.com/hupe1980/halfbuf/blobstore"
)

func Example() {
	arr, err := halfbuf.New(16)
	if err != nil {
		panic(err)
	}

	_ = arr.Set(3, 1.5)
	v, _ := arr.Get(3)
	fmt.Println(v, arr.ByteLen())

	_, err = arr.Get(16)
	fmt.Println(errors.Is(err, halfbuf.ErrIndexOutOfRange))

	// Output:
	// 1.5 32
	// true
}

func ExampleArray_Lookup() {
	arr := halfbuf.FromFloat64s([]float64{0.5, 2})

	v, _ := arr.Lookup("1")
	fmt.Println(v)

	_, err := arr.Lookup("1.5")
	fmt.Println(errors.Is(err, halfbuf.ErrInvalidIndex))

	// Output:
	// 2
	// true
}

func ExampleStore() {
	ctx := context.Background()
	hs := halfbuf.NewStore(blobstore.NewMemoryStore(),
		halfbuf.WithCompression(halfbuf.CompressionLZ4),
	)

	src := halfbuf.FromFloat64s([]float64{1, 0.1, 65504, 1e6})
	if err := hs.Save(ctx, "demo.half", src); err != nil {
		panic(err)
	}

	dst, err := hs.Load(ctx, "demo.half")
	if err != nil {
		panic(err)
	}
	fmt.Println(dst.Float64s())

	// Output:
	// [1 0.0999755859375 65504 +Inf]
}
