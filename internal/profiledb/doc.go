// Package profiledb выполняет выборки профилей из PostgreSQL.
//
// План называет не SQL, а именованный запрос (intent): произвольные
// запросы от модели к базе не допускаются. Каждому intent соответствует
// фиксированный SQL с лимитом и, при необходимости, одним фильтром.
package profiledb
