// Package phonetic renders short strings as NATO phonetic alphabet words so
// they can be read aloud unambiguously over a phone call.
//
// Source: https://en.wikipedia.org/wiki/NATO_phonetic_alphabet
package phonetic

import "strings"

// words maps lowercase characters to their spoken form. Characters outside
// the table pass through unchanged, so Encode is total.
var words = map[rune]string{
	'a': "Alpha", 'b': "Bravo", 'c': "Charlie", 'd': "Delta", 'e': "Echo",
	'f': "Foxtrot", 'g': "Golf", 'h': "Hotel", 'i': "India", 'j': "Juliet",
	'k': "Kilo", 'l': "Lima", 'm': "Mike", 'n': "November", 'o': "Oscar",
	'p': "Papa", 'q': "Quebec", 'r': "Romeo", 's': "Sierra", 't': "Tango",
	'u': "Uniform", 'v': "Victor", 'w': "Whiskey", 'x': "Xray", 'y': "Yankee",
	'z': "Zulu",
	'0': "Zero", '1': "One", '2': "Two", '3': "Three", '4': "Four",
	'5': "Five", '6': "Six", '7': "Seven", '8': "Eight", '9': "Nine",
	'.': "Decimal", '-': "Dash",
}

// chars is the exact left inverse of words, keyed by lowercase word.
var chars = func() map[string]rune {
	m := make(map[string]rune, len(words))
	for ch, word := range words {
		m[strings.ToLower(word)] = ch
	}
	return m
}()

// Encode maps every character of text through the phonetic table and joins
// the results with dashes. Lookup is case-insensitive; unmapped characters
// are kept verbatim.
func Encode(text string) string {
	parts := make([]string, 0, len(text))
	for _, ch := range text {
		parts = append(parts, EncodeChar(ch))
	}
	return strings.Join(parts, "-")
}

// EncodeChar returns the spoken word for a single character, or the character
// itself when it has no phonetic mapping.
func EncodeChar(ch rune) string {
	if word, ok := words[lower(ch)]; ok {
		return word
	}
	return string(ch)
}

// DecodeWord maps a spoken word back to its character. Unknown words are
// returned verbatim, mirroring the pass-through behavior of Encode.
func DecodeWord(word string) string {
	if ch, ok := chars[strings.ToLower(word)]; ok {
		return string(ch)
	}
	return word
}

func lower(ch rune) rune {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}
