package tokenizer

import "strings"

// Encode tokenizes text and maps each token to its vocabulary id. Tokens
// missing from the vocabulary map to UnkID, which is NoID when the vocabulary
// has no unknown token.
//
// Without a vocabulary the ids are the token positions 0, 1, 2, ...; use
// HasVocab to tell the two modes apart.
func (t *Tokenizer) Encode(text string) []int {
	tokens := t.Tokenize(text)
	ids := make([]int, len(tokens))
	if t.vocab == nil {
		for i := range ids {
			ids[i] = i
		}
		return ids
	}
	for i, tok := range tokens {
		id, ok := t.vocab.ID(tok)
		if !ok {
			id = t.ids[Unk]
		}
		ids[i] = id
	}
	return ids
}

// Decode joins the tokens for ids with single spaces. Ids outside the
// vocabulary and pad tokens are skipped. Returns "" without a vocabulary.
func (t *Tokenizer) Decode(ids []int) string {
	if t.vocab == nil {
		return ""
	}
	var sb strings.Builder
	first := true
	for _, id := range ids {
		tok, ok := t.vocab.Token(id)
		if !ok || tok == t.specials.Pad {
			continue
		}
		if !first {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok)
		first = false
	}
	return sb.String()
}

// EncodeSequence encodes text for a fixed-size model input. With special
// tokens and a vocabulary the result is [cls] + ids + [sep], where each marker
// is present only if the vocabulary has it and the ids are truncated so the
// whole sequence fits maxLength. Otherwise the ids are truncated to maxLength.
//
// A maxLength too small for the markers yields the markers alone.
func (t *Tokenizer) EncodeSequence(text string, maxLength int, addSpecialTokens bool) []int {
	ids := t.Encode(text)
	if !addSpecialTokens || t.vocab == nil {
		if maxLength < 0 {
			maxLength = 0
		}
		if len(ids) > maxLength {
			ids = ids[:maxLength]
		}
		return ids
	}

	cls, hasCls := t.SpecialID(Cls)
	sep, hasSep := t.SpecialID(Sep)

	budget := maxLength
	out := make([]int, 0, len(ids)+2)
	if hasCls {
		out = append(out, cls)
		budget--
	}
	if hasSep {
		budget--
	}
	n := min(len(ids), max(budget, 0))
	out = append(out, ids[:n]...)
	if hasSep {
		out = append(out, sep)
	}
	return out
}
