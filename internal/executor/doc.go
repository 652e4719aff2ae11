// Package executor содержит исполнителей шагов плана.
//
// Каждому виду шага соответствует ровно один исполнитель. Исполнитель
// получает шаг и снимок результатов предыдущих шагов, возвращает полный
// результат, однострочную сводку и созданные артефакты. Ошибка
// исполнителя означает провал шага целиком; частичные сбои (отказ по
// одному профилю) описываются внутри результата и шаг не валят.
package executor
