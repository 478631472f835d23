// Command halfconv converts values to and from IEEE-754 half precision and
// moves packed half arrays in and out of blob storage.
//
// Usage:
//
//	halfconv encode 1.5 65504 1e6
//	halfconv decode 0x3c00 0x7bff
//	halfconv pack [-store URL] [-compress zstd] name 1 2 3
//	halfconv unpack [-store URL] name
//	halfconv list [-store URL] [prefix]
//	halfconv matmul [-f16acc]
//
// Store URLs are a local directory (default "."), s3://bucket/prefix, or
// minio://endpoint/bucket/prefix (minios:// for TLS). MinIO credentials are
// read from MINIO_ROOT_USER/MINIO_ROOT_PASSWORD or the AWS_* variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/hupe1980/halfbuf"
	"github.com/hupe1980/halfbuf/blobstore"
	"github.com/hupe1980/halfbuf/blobstore/minio"
	"github.com/hupe1980/halfbuf/blobstore/s3"
	"github.com/hupe1980/halfbuf/compute"
	"github.com/hupe1980/halfbuf/f16"
	"github.com/hupe1980/halfbuf/resource"
	"github.com/hupe1980/halfbuf/staging"
)

var errUsage = errors.New("usage: halfconv <encode|decode|pack|unpack|list|matmul> [flags] [args]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "halfconv:", err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "encode":
		return runEncode(args, stdout)
	case "decode":
		return runDecode(args, stdout)
	case "pack":
		return runPack(ctx, args)
	case "unpack":
		return runUnpack(ctx, args, stdout)
	case "list":
		return runList(ctx, args, stdout)
	case "matmul":
		return runMatMul(ctx, args, stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runEncode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	decimal := fs.Bool("d", false, "print bit-patterns in decimal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, s := range fs.Args() {
		v, err := parseValue(s)
		if err != nil {
			return err
		}
		h := f16.Encode(v)
		if *decimal {
			fmt.Fprintf(stdout, "%s\t%d\t%v\n", s, uint16(h), h.Float64())
		} else {
			fmt.Fprintf(stdout, "%s\t%s\t%v\n", s, h, h.Float64())
		}
	}
	return nil
}

func runDecode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, s := range fs.Args() {
		h, err := f16.ParseBits(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%v\n", h, h.Float64())
	}
	return nil
}

type storeFlags struct {
	url      string
	compress string
	logLevel string
	memLimit int64
	ioLimit  int64
	parallel int64
}

func (f *storeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.url, "store", ".", "blob store: directory, s3://bucket/prefix or minio://endpoint/bucket/prefix")
	fs.StringVar(&f.compress, "compress", "none", "payload compression: none, lz4 or zstd")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.Int64Var(&f.memLimit, "mem-limit", 0, "memory limit in bytes for loaded arrays (0 = unlimited)")
	fs.Int64Var(&f.ioLimit, "io-limit", 0, "transfer limit in bytes per second (0 = unlimited)")
	fs.Int64Var(&f.parallel, "parallel", 4, "concurrent transfers")
}

func (f *storeFlags) open(ctx context.Context) (*halfbuf.Store, error) {
	c, err := halfbuf.ParseCompression(f.compress)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q: %w", f.logLevel, err)
	}

	bs, err := openBlobStore(ctx, f.url)
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   f.memLimit,
		MaxConcurrentIO:    f.parallel,
		IOLimitBytesPerSec: f.ioLimit,
	})

	return halfbuf.NewStore(bs,
		halfbuf.WithCompression(c),
		halfbuf.WithLogLevel(level),
		halfbuf.WithResourceController(rc),
	), nil
}

func runPack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pack", flag.ContinueOnError)
	var sf storeFlags
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: pack needs a blob name", errUsage)
	}

	name := fs.Arg(0)
	values := make([]float64, 0, fs.NArg()-1)
	for _, s := range fs.Args()[1:] {
		v, err := parseValue(s)
		if err != nil {
			return err
		}
		values = append(values, v)
	}

	hs, err := sf.open(ctx)
	if err != nil {
		return err
	}
	return hs.Save(ctx, name, halfbuf.FromFloat64s(values))
}

func runUnpack(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("unpack", flag.ContinueOnError)
	var sf storeFlags
	sf.register(fs)
	raw := fs.Bool("raw", false, "print bit-patterns next to values")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: unpack needs exactly one blob name", errUsage)
	}

	hs, err := sf.open(ctx)
	if err != nil {
		return err
	}
	arr, err := hs.Load(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer arr.Release()

	for i, h := range arr.Bits() {
		if *raw {
			fmt.Fprintf(stdout, "%d\t%s\t%v\n", i, h, h.Float64())
		} else {
			fmt.Fprintln(stdout, h.Float64())
		}
	}
	return nil
}

func runList(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	var sf storeFlags
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	hs, err := sf.open(ctx)
	if err != nil {
		return err
	}
	names, err := hs.List(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

var (
	demoA = []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	demoB = []float64{
		16, 15, 14, 13,
		12, 11, 10, 9,
		8, 7, 6, 5.025,
		4, 3, 2, 1,
	}
)

// runMatMul multiplies the 4x4 demo matrices. The operands go through the
// same upload path a device would see: staged, flushed to a buffer, and
// read back from its bytes.
func runMatMul(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("matmul", flag.ContinueOnError)
	halfAcc := fs.Bool("f16acc", false, "accumulate partial sums in half precision")
	if err := fs.Parse(args); err != nil {
		return err
	}

	upload := func(values []float64) (*halfbuf.Array, error) {
		st := staging.New(halfbuf.FromFloat64s(values))
		st.MarkAll()
		dev := staging.NewMemoryBuffer(st.Array().ByteLen())
		if err := st.Flush(ctx, dev); err != nil {
			return nil, err
		}
		return halfbuf.FromBytes(dev.Bytes())
	}

	a, err := upload(demoA)
	if err != nil {
		return err
	}
	b, err := upload(demoB)
	if err != nil {
		return err
	}

	m := compute.NewMultiplier(&compute.CPU{HalfAccumulate: *halfAcc})
	c, err := m.MatMul(ctx, a, b, 4)
	if err != nil {
		return err
	}

	values := c.Float64s()
	for row := range 4 {
		cells := make([]string, 4)
		for col := range 4 {
			cells[col] = strconv.FormatFloat(values[row*4+col], 'g', -1, 64)
		}
		fmt.Fprintln(stdout, strings.Join(cells, "\t"))
	}
	return nil
}

// parseValue accepts decimal floats plus inf, -inf and nan.
func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			// Out-of-range literals saturate to ±Inf or 0, as the encoder would.
			return v, nil
		}
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}

type storeURL struct {
	kind     string // "local", "s3" or "minio"
	dir      string
	endpoint string
	bucket   string
	prefix   string
	secure   bool
}

func parseStoreURL(raw string) (storeURL, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return storeURL{kind: "local", dir: raw}, nil
	}

	switch scheme {
	case "file":
		return storeURL{kind: "local", dir: rest}, nil
	case "s3":
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return storeURL{}, fmt.Errorf("store %q: missing bucket", raw)
		}
		return storeURL{kind: "s3", bucket: bucket, prefix: prefix}, nil
	case "minio", "minios":
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return storeURL{}, fmt.Errorf("store %q: want minio://endpoint/bucket[/prefix]", raw)
		}
		u := storeURL{kind: "minio", endpoint: parts[0], bucket: parts[1], secure: scheme == "minios"}
		if len(parts) == 3 {
			u.prefix = parts[2]
		}
		return u, nil
	default:
		return storeURL{}, fmt.Errorf("store %q: unsupported scheme %q", raw, scheme)
	}
}

func openBlobStore(ctx context.Context, raw string) (blobstore.BlobStore, error) {
	u, err := parseStoreURL(raw)
	if err != nil {
		return nil, err
	}

	switch u.kind {
	case "s3":
		return s3.New(ctx, u.bucket, s3.WithPrefix(u.prefix))
	case "minio":
		return minio.Dial(ctx, u.endpoint, u.bucket, u.prefix, minio.WithSecure(u.secure))
	default:
		return blobstore.NewLocalStore(u.dir), nil
	}
}
