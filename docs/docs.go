// Package docs регистрирует OpenAPI-описание API планов для swaggo.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/plans": {
            "get": {
                "description": "Возвращает все активные планы, упорядоченные по ID.",
                "produces": ["application/json"],
                "tags": ["Plans"],
                "summary": "Список планов",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Создает новый активный тарифный план. Цена не может быть отрицательной.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Plans"],
                "summary": "Создать план",
                "parameters": [
                    {
                        "description": "Название и цена плана",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.CreatePlanRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный JSON", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Пользователь не авторизован", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Недостаточно прав", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/plans/upgrade-quote": {
            "get": {
                "description": "Стоимость немедленного перехода на план не дешевле текущего с зачётом неиспользованных дней текущего месяца.",
                "produces": ["application/json"],
                "tags": ["Plans"],
                "summary": "Рассчитать стоимость апгрейда",
                "parameters": [
                    {"type": "integer", "description": "ID текущего плана", "name": "old_plan_id", "in": "query", "required": true},
                    {"type": "integer", "description": "ID нового плана", "name": "new_plan_id", "in": "query", "required": true},
                    {"type": "string", "description": "Дата расчёта, 2006-01-02 или RFC3339", "name": "reference_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректные параметры", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "План не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Цена нового плана ниже текущего", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/plans/{id}": {
            "get": {
                "description": "Возвращает активный план по ID.",
                "produces": ["application/json"],
                "tags": ["Plans"],
                "summary": "Получить план",
                "parameters": [{"type": "integer", "description": "ID плана", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный ID", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "План не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Изменяет название и/или цену активного плана.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Plans"],
                "summary": "Обновить план",
                "parameters": [
                    {"type": "integer", "description": "ID плана", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Изменяемые поля",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.UpdatePlanRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "План не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "План получает статус retired и исчезает из каталога.",
                "produces": ["application/json"],
                "tags": ["Plans"],
                "summary": "Вывести план из продажи",
                "parameters": [{"type": "integer", "description": "ID плана", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "План не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.CreatePlanRequest": {
            "type": "object",
            "required": ["name", "price"],
            "properties": {
                "name": {"type": "string", "maxLength": 255},
                "price": {"type": "string", "example": "123.00"}
            }
        },
        "models.UpdatePlanRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 255, "minLength": 1},
                "price": {"type": "string", "example": "321.00"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid request body"},
                "status": {"type": "string", "example": "Error"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Subscription Plans API",
	Description:      "Каталог тарифных планов и расчёт стоимости апгрейда",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
