package intake

// Worker-emitted user messages.
const (
	msgRecognized           = "🔍 Распознано: "
	msgNothingRecognized    = "🤔 Не удалось распознать баллы на скриншоте. Куратор проверит вручную."
	msgScoresConfirmed      = "✅ Баллы подтверждены!"
	msgImageUnreadable      = "⚠️ Не получилось прочитать изображение. Пришлите скриншот ещё раз."
	msgCheckFailed          = "⚠️ Ошибка проверки. Попробуйте прислать скриншот ещё раз."
	msgStoreError           = "⚠️ Не удалось сохранить баллы в таблицу. Куратор уже в курсе."
	msgFeedbackAlreadySaved = "🙂 Ваш отзыв уже сохранён. Чтобы обновить, отправьте новый текст, видео или скриншот площадки."
	msgThanksAwaitingReview = "🙏 Спасибо за баллы! Теперь, пожалуйста, оставьте отзыв на внешней площадке."

	msgReviewInstructions = `🟢 ТЗ К ОТЗЫВАМ НА ВП (внешние площадки) 🟢

Почему ты выбрала «99 баллов»?
Поделись своими впечатлениями об уроках, конспектах, домашних заданиях. Может, запомнились какие-то лайфхаки или что-то на уроках оказалось для тебя наиболее ценным и эффективным?
Расскажи, в чем улучшились твои знания во время обучения в «99 баллов» и какой результат ты получила.
Кому бы ты порекомендовала нашу школу и почему?

👆 Если оставишь отзыв на ВП, то пришли скрин

Отзывы ты можешь оставить на одной из этих площадок:
- ОТЗОВИК (в поисковике набери «отзовик 99 баллов»)
- Яндекс Карты
- Сравни
- 2ГИС

Отзыв можно оставить в нескольких местах.

Если не хочешь оставлять отзыв, отправь просто «-».

📹 Видео-отзыв:
1. Держите телефон горизонтально.
2. Проверьте качество звука — без громких шумов.

Что рассказать:
- Ваше имя;
- Из какого города вы;
- На каком предмете(ах) и в каком году вы занимались;
- Сколько баллов вы написали на экзамене;
- Почему вы выбрали «99 баллов»;
- Ваши впечатления об уроках, конспектах и домашних заданиях;
- Какие лайфхаки вы вынесли;
- В чём улучшились ваши знания;
- Кому бы вы порекомендовали нашу школу и почему;
- Небольшое заключение и напутствие.`
)
