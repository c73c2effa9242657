package codec

import (
	"bufio"
	"bytes"
	"io"

	"userfreqs/internal/core/freq"
	perr "userfreqs/internal/platform/errors"
)

// Sniff reports the version of the stream behind br without consuming it.
// A stream that opens with the v2 magic is v2; anything else, including a
// stream too short to hold the magic, is treated as v1.
func Sniff(br *bufio.Reader) (Version, error) {
	b, err := br.Peek(len(magic))
	switch {
	case err == nil && bytes.Equal(b, magic[:]):
		return V2, nil
	case err == nil, err == io.EOF, err == io.ErrUnexpectedEOF:
		return V1, nil
	}
	return VersionAuto, perr.Wrap(err, perr.ErrorCodeDecode, "codec: sniff")
}

type decoder struct {
	br     *bufio.Reader
	lay    layout
	maxKey uint64
	buf    []byte
}

// read fills p or reports why it could not
func (d *decoder) read(p []byte, what string) error {
	if _, err := io.ReadFull(d.br, p); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return perr.Wrapf(ErrTruncated, perr.ErrorCodeDecode, "codec: reading %s", what)
		}
		return perr.Wrapf(err, perr.ErrorCodeDecode, "codec: reading %s", what)
	}
	return nil
}

func (d *decoder) u64(what string) (uint64, error) {
	var b [8]byte
	if err := d.read(b[:], what); err != nil {
		return 0, err
	}
	return d.lay.order.Uint64(b[:]), nil
}

func (d *decoder) key(what string) (string, error) {
	var b [8]byte
	lp := b[:d.lay.lenWidth]
	if err := d.read(lp, what+" length"); err != nil {
		return "", err
	}
	n := d.lay.parseLen(lp)
	if n > d.maxKey {
		return "", perr.Wrapf(ErrCorrupt, perr.ErrorCodeDecode, "codec: %s length %d exceeds %d", what, n, d.maxKey)
	}
	if uint64(cap(d.buf)) < n {
		d.buf = make([]byte, n)
	}
	kb := d.buf[:n]
	if err := d.read(kb, what); err != nil {
		return "", err
	}
	return string(kb), nil
}

func (d *decoder) header() error {
	var h [headerLen]byte
	if err := d.read(h[:], "header"); err != nil {
		return err
	}
	if !bytes.Equal(h[:len(magic)], magic[:]) {
		return perr.Wrapf(ErrCorrupt, perr.ErrorCodeDecode, "codec: bad magic %q", h[:len(magic)])
	}
	if v := Version(h[len(magic)]); v != V2 {
		return perr.Wrapf(ErrUnsupportedVersion, perr.ErrorCodeDecode, "codec: header version %d", uint8(v))
	}
	return nil
}

// Decode reads one corpus from r. The stream must end right after the last
// entry; keys must be strictly ascending at both levels.
func Decode(r io.Reader, opts ...Option) (freq.Corpus, error) {
	c, err := decode(r, buildOptions(opts))
	return c, perr.WithOp(err, "decode")
}

func decode(r io.Reader, o options) (freq.Corpus, error) {
	br := bufio.NewReaderSize(r, bufSize)

	v := o.version
	if v == VersionAuto {
		sv, err := Sniff(br)
		if err != nil {
			return nil, err
		}
		v = sv
	}
	lay, err := layoutOf(v)
	if err != nil {
		return nil, err
	}

	d := &decoder{br: br, lay: lay, maxKey: uint64(o.maxKeyLen)}
	if lay.header {
		if err := d.header(); err != nil {
			return nil, err
		}
	}

	total, err := d.u64("author count")
	if err != nil {
		return nil, err
	}
	o.observer.emit(Event{Kind: EventMessage, Msg: "decoding " + v.String() + " corpus"})
	o.observer.emit(Event{Kind: EventTotal, N: total})

	// counts come from the stream; cap preallocation so a corrupt count cannot balloon memory
	c := make(freq.Corpus, min(total, 1<<16))
	p := progress{obs: o.observer, every: o.progressEvery}
	var prev string
	for i := uint64(0); i < total; i++ {
		author, err := d.key("author")
		if err != nil {
			return nil, perr.WithField(err, "author")
		}
		if i > 0 && author <= prev {
			return nil, perr.Wrapf(ErrCorrupt, perr.ErrorCodeDecode, "codec: author %d out of order", i)
		}
		words, err := d.u64("word count")
		if err != nil {
			return nil, err
		}
		wc := make(freq.WordCount, min(words, 1<<12))
		var pw string
		for j := uint64(0); j < words; j++ {
			word, err := d.key("word")
			if err != nil {
				return nil, perr.WithField(err, "word")
			}
			if j > 0 && word <= pw {
				return nil, perr.Wrapf(ErrCorrupt, perr.ErrorCodeDecode, "codec: word %d of author %d out of order", j, i)
			}
			n, err := d.u64("count")
			if err != nil {
				return nil, err
			}
			wc[word] = n
			pw = word
		}
		c[author] = wc
		prev = author
		p.step(total)
	}

	switch _, err := br.ReadByte(); {
	case err == nil:
		return nil, perr.Wrap(ErrCorrupt, perr.ErrorCodeDecode, "codec: trailing bytes after last entry")
	case err != io.EOF:
		return nil, perr.Wrap(err, perr.ErrorCodeDecode, "codec: reading trailer")
	}
	return c, nil
}
