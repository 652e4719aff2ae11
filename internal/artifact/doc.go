// Package artifact учитывает файлы, созданные шагами планов.
//
// Сами файлы лежат на диске в каталоге артефактов; пакет ведёт записи
// о них и отдаёт содержимое по id. Жизненный цикл артефакта независим
// от плана: запись переживает шаг и план, которые её породили.
package artifact
