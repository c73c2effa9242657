package codec

import (
	"bufio"
	"io"

	"userfreqs/internal/core/freq"
	perr "userfreqs/internal/platform/errors"
)

// countingWriter tallies bytes that reached the sink
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type encoder struct {
	bw      *bufio.Writer
	lay     layout
	scratch []byte
}

func (e *encoder) u64(v uint64) error {
	e.scratch = e.lay.order.AppendUint64(e.scratch[:0], v)
	_, err := e.bw.Write(e.scratch)
	return err
}

func (e *encoder) key(k string) error {
	if uint64(len(k)) > e.lay.maxLen() {
		return perr.Newf(perr.ErrorCodeEncode, "codec: key of %d bytes exceeds the %d byte length prefix", len(k), e.lay.lenWidth)
	}
	e.scratch = e.lay.appendLen(e.scratch[:0], len(k))
	if _, err := e.bw.Write(e.scratch); err != nil {
		return err
	}
	_, err := e.bw.WriteString(k)
	return err
}

// Encode streams c to w in sorted order. Nothing beyond one buffered block is
// held in memory; w sees bytes as the walk progresses.
func Encode(w io.Writer, c freq.Corpus, opts ...Option) (Stats, error) {
	o := buildOptions(opts)
	v := o.version
	if v == VersionAuto {
		v = Current
	}
	lay, err := layoutOf(v)
	if err != nil {
		return Stats{}, perr.WithOp(perr.Wrap(err, perr.ErrorCodeEncode, "codec: encode"), "encode")
	}

	cw := &countingWriter{w: w}
	e := &encoder{bw: bufio.NewWriterSize(cw, bufSize), lay: lay, scratch: make([]byte, 0, 8)}
	var st Stats

	fail := func(err error, what string) (Stats, error) {
		_ = e.bw.Flush()
		st.Bytes = cw.n
		if _, ok := perr.As(err); !ok {
			err = perr.Wrapf(err, perr.ErrorCodeEncode, "codec: write %s", what)
		}
		return st, perr.WithOp(err, "encode")
	}

	authors := freq.SortedKeys(c)
	total := uint64(len(authors))
	o.observer.emit(Event{Kind: EventMessage, Msg: "encoding " + v.String() + " corpus"})
	o.observer.emit(Event{Kind: EventTotal, N: total})

	if lay.header {
		hdr := append(magic[:], byte(v))
		if _, err := e.bw.Write(hdr); err != nil {
			return fail(err, "header")
		}
	}
	if err := e.u64(total); err != nil {
		return fail(err, "author count")
	}

	p := progress{obs: o.observer, every: o.progressEvery}
	for _, author := range authors {
		wc := c[author]
		if err := e.key(author); err != nil {
			return fail(err, "author")
		}
		if err := e.u64(uint64(len(wc))); err != nil {
			return fail(err, "word count")
		}
		for _, word := range freq.SortedKeys(wc) {
			if err := e.key(word); err != nil {
				return fail(err, "word")
			}
			if err := e.u64(wc[word]); err != nil {
				return fail(err, "count")
			}
			st.Words++
		}
		st.Authors++
		p.step(total)
	}
	if err := e.bw.Flush(); err != nil {
		return fail(err, "flush")
	}
	st.Bytes = cw.n
	return st, nil
}
