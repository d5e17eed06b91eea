// Package tasks содержит встроенные задачи воркера.
//
//	Greeter#sayHello(text string) string    — "Hello " + text
//	Delay#sleep(seconds float64) float64    — ожидание с поддержкой отмены
//	Transform#echo(value any) any           — возвращает аргумент как есть
//	Math#add(a, b float64) float64          — сумма
//
// Register добавляет их в реестр до Seal.
package tasks
