// Package uploadhttp реализует Upload API — HTTP-интерфейс сервера возобновляемых
// загрузок. Основные эндпоинты:
//   - POST /uploads — регистрирует сессию, отвечает upload_id и параметрами нарезки.
//   - PUT /uploads/{uploadID}/chunks/{idx} — принимает кусок, проверяет размер/хеш.
//   - GET /uploads/{uploadID} — отдаёт состояние и список недостающих кусков.
//   - POST /uploads/{uploadID}/complete — собирает готовый файл из кусков.
//   - DELETE /uploads/{uploadID} — отменяет сессию и чистит staging.
//   - GET /uploads — перечисляет живые сессии.
//   - POST /files, GET /files/{name}, GET /files — загрузка одним потоком, выдача и листинг.
//   - GET /health — статистика диска для health-check'ов.
package uploadhttp
