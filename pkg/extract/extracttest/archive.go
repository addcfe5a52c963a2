// Package extracttest builds gzip-compressed tarballs for tests.
package extracttest

import (
	"archive/tar"
	"bytes"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Entry is one archive member
type Entry struct {
	Name     string
	Body     string
	Mode     int64
	Type     byte
	Linkname string
}

// Build returns a .tar.gz containing entries in order
func Build(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		typ := e.Type
		if typ == 0 {
			typ = tar.TypeReg
		}
		mode := e.Mode
		if mode == 0 {
			mode = 0644
			if typ == tar.TypeDir {
				mode = 0755
			}
		}

		hdr := &tar.Header{
			Name:     e.Name,
			Mode:     mode,
			Typeflag: typ,
			Linkname: e.Linkname,
		}
		if typ == tar.TypeReg {
			hdr.Size = int64(len(e.Body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if typ == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				return nil, err
			}
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FakeNativeImage is a shell script standing in for the native-image compiler.
// It parses -H:Path= and -H:Name= and writes an executable at Path/Name.
const FakeNativeImage = `#!/bin/sh
out_dir=.
out_name=
for arg in "$@"; do
  case "$arg" in
    -H:Path=*) out_dir="${arg#-H:Path=}" ;;
    -H:Name=*) out_name="${arg#-H:Name=}" ;;
  esac
done
echo "fake native-image $*"
mkdir -p "$out_dir"
printf '#!/bin/sh\necho built\n' > "$out_dir/$out_name"
chmod 755 "$out_dir/$out_name"
`

// ToolkitArchive builds a GraalVM-shaped archive for version with the
// compiler at the Linux location (graalvm-ce-<version>/bin/native-image)
func ToolkitArchive(version, compilerScript string) ([]byte, error) {
	top := "graalvm-ce-" + version + "/"
	return Build([]Entry{
		{Name: top, Type: tar.TypeDir},
		{Name: top + "bin/", Type: tar.TypeDir},
		{Name: top + "bin/native-image", Body: compilerScript, Mode: 0755},
		{Name: top + "release", Body: "JAVA_VERSION=\"1.8.0\"\n"},
	})
}

// WriteToolkitArchive writes ToolkitArchive output to path
func WriteToolkitArchive(path, version, compilerScript string) error {
	data, err := ToolkitArchive(version, compilerScript)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
