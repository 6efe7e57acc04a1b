/*
Package staticlint предоставляет пользовательские анализаторы для multichecker.

OsExitAnalyzer запрещает прямой вызов os.Exit в функции main пакета main.
HitEncodingAnalyzer запрещает кодировать параметры хита через net/url вне пакета
internal/hit: url.QueryEscape и url.Values.Encode экранируют запятые, а
Measurement Protocol ожидает их как есть.

Использование:

	multichecker ./...
*/
package staticlint
