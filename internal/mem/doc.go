// Package mem provides aligned allocation for buffers that are handed to
// bulk-transfer consumers (GPU uploads, direct IO).
package mem
