// Package registry — реестр task handler'ов воркера.
//
// Реестр отображает ключ задачи (первая часть имени "key#operation")
// на Handler — явную таблицу операций. Каждая Operation — типизированное
// замыкание, построенное через Op0…Op3, с объявленным списком типов параметров.
//
//	reg := registry.New()
//	err := reg.Register(registry.NewHandler("Greeter",
//	    registry.Op1("sayHello", func(ctx context.Context, text string) (string, error) {
//	        return "Hello " + text, nil
//	    }),
//	))
//
// Реестр заполняется один раз при старте и запечатывается (Seal) до начала
// обработки сообщений. После Seal чтения не требуют блокировок.
package registry
