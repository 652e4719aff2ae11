// Package registry хранит планы и управляет их жизненным циклом.
//
// Хранилище — единственная точка мутации плана. Каждое изменение идёт
// через Update: план клонируется, изменение применяется к копии, и
// снимок подменяется целиком (copy-on-write). Читатели получают
// неизменяемые снимки и никогда не наблюдают частичных изменений.
package registry
